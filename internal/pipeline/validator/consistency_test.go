package validator

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elskow/deployit/internal/pipeline/types"
)

func TestProjectValidator_CheckConsistency(t *testing.T) {
	descriptor := func() *types.ProjectDescriptor {
		return &types.ProjectDescriptor{Name: "shop", Host: "shop.example.com", InternalPort: 3000}
	}

	tests := []struct {
		name      string
		pvc       string
		modify    func(*types.ProjectDescriptor)
		image     string
		wantStale []string
	}{
		{
			name:  "matching manifests",
			image: "registry.example.com/shop",
		},
		{
			name:  "manual edits outside the checked fields",
			pvc:   strings.Replace(testPVC, "storage: 5Gi", "storage: 50Gi", 1),
			image: "registry.example.com/shop",
		},
		{
			name:      "renamed project",
			modify:    func(d *types.ProjectDescriptor) { d.Name = "shop-v2" },
			image:     "registry.example.com/shop-v2",
			wantStale: []string{"deployment name", "claim name", "image"},
		},
		{
			name:      "moved host",
			modify:    func(d *types.ProjectDescriptor) { d.Host = "new.example.com" },
			image:     "registry.example.com/shop",
			wantStale: []string{"ingress host"},
		},
		{
			name:      "changed port",
			modify:    func(d *types.ProjectDescriptor) { d.InternalPort = 4000 },
			image:     "registry.example.com/shop",
			wantStale: []string{"container port"},
		},
		{
			name:      "other registry",
			image:     "registry.other.com/shop",
			wantStale: []string{"image"},
		},
	}

	v := newTestValidator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			manifests := types.Manifests{Workload: testWorkload, PVC: testPVC}
			if tt.pvc != "" {
				manifests.PVC = tt.pvc
			}
			d := descriptor()
			if tt.modify != nil {
				tt.modify(d)
			}

			err := v.CheckConsistency(manifests, d, tt.image)
			if len(tt.wantStale) == 0 {
				assert.NoError(t, err)
				return
			}

			var stale *types.StaleManifestError
			require.ErrorAs(t, err, &stale)
			require.Len(t, stale.Mismatches, len(tt.wantStale))
			for i, field := range tt.wantStale {
				assert.True(t, strings.HasPrefix(stale.Mismatches[i], field), stale.Mismatches[i])
			}
			assert.Contains(t, err.Error(), "--force")
		})
	}
}

func TestProjectValidator_CheckConsistency_Undecodable(t *testing.T) {
	err := newTestValidator().CheckConsistency(types.Manifests{Workload: testWorkload}, &types.ProjectDescriptor{Name: "shop"}, "registry.example.com/shop")
	assert.Error(t, err)

	var stale *types.StaleManifestError
	assert.False(t, errors.As(err, &stale))
}
