package deployer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/api/resource"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes/fake"

	"github.com/elskow/deployit/internal/pipeline/config"
	"github.com/elskow/deployit/internal/pipeline/types"
)

type testCase struct {
	name        string
	port        int
	manifests   func(*Request)
	setupMocks  func(*testing.T, K8sClient)
	validate    func(*testing.T, K8sClient)
	expectError bool
}

func TestK8sDeployer_Deploy(t *testing.T) {
	tests := []testCase{
		{
			name: "fresh namespace",
			port: 3000,
			validate: func(t *testing.T, client K8sClient) {
				ctx := context.TODO()

				deployment, err := client.GetDeployment(ctx, "apps", "shop-deployment")
				require.NoError(t, err)
				assert.Equal(t, int32(1), *deployment.Spec.Replicas)
				container := deployment.Spec.Template.Spec.Containers[0]
				assert.Equal(t, "registry.rapidohio.com/shop", container.Image)
				assert.Equal(t, int32(3000), container.Ports[0].ContainerPort)
				assert.Equal(t, "/data", container.VolumeMounts[0].MountPath)

				svc, err := client.GetService(ctx, "apps", "shop-prod")
				require.NoError(t, err)
				assert.Equal(t, corev1.ServiceTypeClusterIP, svc.Spec.Type)
				assert.Equal(t, int32(3000), svc.Spec.Ports[0].Port)

				ing, err := client.GetIngress(ctx, "apps", "shop-ingress")
				require.NoError(t, err)
				assert.Equal(t, "shop.audent.ai", ing.Spec.Rules[0].Host)
				assert.Equal(t, "wildcard-audent-ai-1", ing.Spec.TLS[0].SecretName)

				pvc, err := client.GetPersistentVolumeClaim(ctx, "apps", "shop-data-volume-claim")
				require.NoError(t, err)
				assert.Equal(t, corev1.ReadWriteOnce, pvc.Spec.AccessModes[0])
			},
		},
		{
			name: "existing objects are updated",
			port: 4000,
			setupMocks: func(t *testing.T, client K8sClient) {
				deployer := NewK8sDeployerWithClient(testK8sConfig(), client, zap.NewNop())
				require.NoError(t, deployer.Deploy(context.TODO(), testRequest(t, 3000, nil)))
			},
			validate: func(t *testing.T, client K8sClient) {
				deployment, err := client.GetDeployment(context.TODO(), "apps", "shop-deployment")
				require.NoError(t, err)
				assert.Equal(t, int32(4000), deployment.Spec.Template.Spec.Containers[0].Ports[0].ContainerPort)

				svc, err := client.GetService(context.TODO(), "apps", "shop-prod")
				require.NoError(t, err)
				assert.Equal(t, int32(4000), svc.Spec.Ports[0].TargetPort.IntVal)
			},
		},
		{
			name: "existing claim is kept",
			port: 3000,
			setupMocks: func(t *testing.T, client K8sClient) {
				_, err := client.CreatePersistentVolumeClaim(context.TODO(), "apps", &corev1.PersistentVolumeClaim{
					ObjectMeta: metav1.ObjectMeta{Name: "shop-data-volume-claim", Namespace: "apps"},
					Spec: corev1.PersistentVolumeClaimSpec{
						AccessModes: []corev1.PersistentVolumeAccessMode{corev1.ReadWriteOnce},
						Resources: corev1.VolumeResourceRequirements{
							Requests: corev1.ResourceList{corev1.ResourceStorage: resource.MustParse("20Gi")},
						},
					},
				})
				require.NoError(t, err)
			},
			validate: func(t *testing.T, client K8sClient) {
				pvc, err := client.GetPersistentVolumeClaim(context.TODO(), "apps", "shop-data-volume-claim")
				require.NoError(t, err)
				storage := pvc.Spec.Resources.Requests[corev1.ResourceStorage]
				assert.Equal(t, "20Gi", storage.String())

				_, err = client.GetDeployment(context.TODO(), "apps", "shop-deployment")
				assert.NoError(t, err)
			},
		},
		{
			name: "undecodable manifests",
			port: 3000,
			manifests: func(r *Request) {
				r.Manifests.PVC = ""
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := NewClientsetK8sClient(fake.NewSimpleClientset())
			if tt.setupMocks != nil {
				tt.setupMocks(t, client)
			}

			req := testRequest(t, tt.port, nil)
			if tt.manifests != nil {
				tt.manifests(req)
			}

			err := NewK8sDeployerWithClient(testK8sConfig(), client, zap.NewNop()).Deploy(context.TODO(), req)
			if tt.expectError {
				var subErr *types.SubmissionError
				assert.ErrorAs(t, err, &subErr)
				return
			}
			require.NoError(t, err)
			if tt.validate != nil {
				tt.validate(t, client)
			}
		})
	}
}

func testK8sConfig() *config.DeployConfig {
	cfg := config.Default()
	cfg.Deploy.Platform = PlatformKubernetes
	cfg.Deploy.Namespace = "apps"
	return &cfg.Deploy
}
