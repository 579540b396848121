package deployer

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/elskow/deployit/internal/pipeline/config"
	"github.com/elskow/deployit/internal/pipeline/templates"
	"github.com/elskow/deployit/internal/pipeline/types"
)

func testRequest(t *testing.T, port int, env map[string]string) *Request {
	t.Helper()
	cfg := config.Default()

	catalog, err := templates.NewCatalog()
	require.NoError(t, err)

	data := &templates.Data{
		Name:           "shop",
		Host:           "shop.audent.ai",
		Port:           port,
		Registry:       cfg.Builder.Registry,
		TLSSecretName:  cfg.Deploy.TLSSecretName,
		StorageRequest: cfg.Deploy.StorageRequest,
		StoragePath:    types.PersistentStoragePath,
	}
	workload, err := catalog.Workload().Render(data)
	require.NoError(t, err)
	pvc, err := catalog.PVC().Render(data)
	require.NoError(t, err)

	return &Request{
		Descriptor: types.ProjectDescriptor{Name: "shop", Host: "shop.audent.ai", InternalPort: port},
		Manifests:  types.Manifests{Workload: workload, PVC: pvc},
		Lookup: func(key string) (string, bool) {
			v, ok := env[key]
			return v, ok
		},
	}
}
