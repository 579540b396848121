package deployer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	k8serrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/tools/clientcmd"

	"github.com/elskow/deployit/internal/pipeline/config"
	"github.com/elskow/deployit/internal/pipeline/types"
	"github.com/elskow/deployit/internal/pipeline/validator"
)

// K8sDeployer applies the rendered manifests straight to a cluster instead of
// going through the deploy endpoint. Existing objects are updated in place;
// nothing is rolled back on failure.
type K8sDeployer struct {
	config    *config.DeployConfig
	logger    *zap.Logger
	k8sClient K8sClient
}

func NewK8sDeployer(config *config.DeployConfig, logger *zap.Logger) (*K8sDeployer, error) {
	kubeconfig := config.Kubeconfig
	if kubeconfig == "" {
		kubeconfig = filepath.Join(os.Getenv("HOME"), ".kube", "config")
	}

	restConfig, err := clientcmd.BuildConfigFromFlags("", kubeconfig)
	if err != nil {
		return nil, fmt.Errorf("failed to load kubeconfig: %w", err)
	}
	restConfig.Timeout = config.Timeout

	clientset, err := kubernetes.NewForConfig(restConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create k8s client: %w", err)
	}

	return NewK8sDeployerWithClient(config, NewClientsetK8sClient(clientset), logger), nil
}

func NewK8sDeployerWithClient(config *config.DeployConfig, client K8sClient, logger *zap.Logger) *K8sDeployer {
	return &K8sDeployer{
		config:    config,
		logger:    logger,
		k8sClient: client,
	}
}

func (d *K8sDeployer) Deploy(ctx context.Context, req *Request) error {
	objs, err := validator.DecodeManifests(req.Manifests)
	if err != nil {
		return &types.SubmissionError{Err: err}
	}

	ns := d.config.Namespace
	objs.PVC.Namespace = ns
	objs.Deployment.Namespace = ns
	objs.Service.Namespace = ns
	objs.Ingress.Namespace = ns

	// The claim goes first so the pod never waits on a missing volume.
	steps := []struct {
		kind  string
		name  string
		apply func() error
	}{
		{"persistentvolumeclaim", objs.PVC.Name, func() error { return d.applyPVC(ctx, objs) }},
		{"deployment", objs.Deployment.Name, func() error { return d.applyDeployment(ctx, objs) }},
		{"service", objs.Service.Name, func() error { return d.applyService(ctx, objs) }},
		{"ingress", objs.Ingress.Name, func() error { return d.applyIngress(ctx, objs) }},
	}

	for _, step := range steps {
		if err := step.apply(); err != nil {
			return &types.SubmissionError{Err: err}
		}
		d.logger.Info("applied kubernetes object",
			zap.String("kind", step.kind),
			zap.String("name", step.name),
			zap.String("namespace", ns))
	}

	return nil
}

func (d *K8sDeployer) applyPVC(ctx context.Context, objs *validator.DecodedManifests) error {
	ns := d.config.Namespace
	_, err := d.k8sClient.CreatePersistentVolumeClaim(ctx, ns, objs.PVC)
	if err == nil {
		return nil
	}
	if !k8serrors.IsAlreadyExists(err) {
		return fmt.Errorf("failed to create persistent volume claim: %w", err)
	}
	// A bound claim's spec is immutable; keep the existing one and its data.
	if _, err := d.k8sClient.GetPersistentVolumeClaim(ctx, ns, objs.PVC.Name); err != nil {
		return fmt.Errorf("failed to get persistent volume claim: %w", err)
	}
	return nil
}

func (d *K8sDeployer) applyDeployment(ctx context.Context, objs *validator.DecodedManifests) error {
	ns := d.config.Namespace
	deployment := objs.Deployment

	_, err := d.k8sClient.CreateDeployment(ctx, ns, deployment)
	if err != nil {
		if k8serrors.IsAlreadyExists(err) {
			existing, err := d.k8sClient.GetDeployment(ctx, ns, deployment.Name)
			if err != nil {
				return fmt.Errorf("failed to get deployment: %w", err)
			}
			deployment.ResourceVersion = existing.ResourceVersion
			_, err = d.k8sClient.UpdateDeployment(ctx, ns, deployment)
			if err != nil {
				return fmt.Errorf("failed to update deployment: %w", err)
			}
		} else {
			return fmt.Errorf("failed to create deployment: %w", err)
		}
	}
	return nil
}

func (d *K8sDeployer) applyService(ctx context.Context, objs *validator.DecodedManifests) error {
	ns := d.config.Namespace
	service := objs.Service

	_, err := d.k8sClient.CreateService(ctx, ns, service)
	if err != nil {
		if k8serrors.IsAlreadyExists(err) {
			existing, err := d.k8sClient.GetService(ctx, ns, service.Name)
			if err != nil {
				return fmt.Errorf("failed to get service: %w", err)
			}
			// The cluster IP is assigned once and cannot change.
			service.ResourceVersion = existing.ResourceVersion
			service.Spec.ClusterIP = existing.Spec.ClusterIP
			service.Spec.ClusterIPs = existing.Spec.ClusterIPs
			_, err = d.k8sClient.UpdateService(ctx, ns, service)
			if err != nil {
				return fmt.Errorf("failed to update service: %w", err)
			}
		} else {
			return fmt.Errorf("failed to create service: %w", err)
		}
	}
	return nil
}

func (d *K8sDeployer) applyIngress(ctx context.Context, objs *validator.DecodedManifests) error {
	ns := d.config.Namespace
	ingress := objs.Ingress

	_, err := d.k8sClient.CreateIngress(ctx, ns, ingress)
	if err != nil {
		if k8serrors.IsAlreadyExists(err) {
			existing, err := d.k8sClient.GetIngress(ctx, ns, ingress.Name)
			if err != nil {
				return fmt.Errorf("failed to get ingress: %w", err)
			}
			ingress.ResourceVersion = existing.ResourceVersion
			_, err = d.k8sClient.UpdateIngress(ctx, ns, ingress)
			if err != nil {
				return fmt.Errorf("failed to update ingress: %w", err)
			}
		} else {
			return fmt.Errorf("failed to create ingress: %w", err)
		}
	}
	return nil
}
