package validator

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	networkingv1 "k8s.io/api/networking/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	utilyaml "k8s.io/apimachinery/pkg/util/yaml"
	"sigs.k8s.io/yaml"

	"github.com/elskow/deployit/internal/pipeline/types"
)

// DecodedManifests holds the typed objects behind the rendered documents.
type DecodedManifests struct {
	Deployment *appsv1.Deployment
	Service    *corev1.Service
	Ingress    *networkingv1.Ingress
	PVC        *corev1.PersistentVolumeClaim
}

// DecodeManifests parses the workload document stream and the PVC document
// into typed Kubernetes objects. Every kind must appear exactly once.
func DecodeManifests(manifests types.Manifests) (*DecodedManifests, error) {
	out := &DecodedManifests{}

	docs, err := splitDocuments(manifests.Workload)
	if err != nil {
		return nil, fmt.Errorf("invalid workload manifest: %w", err)
	}
	pvcDocs, err := splitDocuments(manifests.PVC)
	if err != nil {
		return nil, fmt.Errorf("invalid pvc manifest: %w", err)
	}
	docs = append(docs, pvcDocs...)

	for _, doc := range docs {
		var meta metav1.TypeMeta
		if err := yaml.Unmarshal(doc, &meta); err != nil {
			return nil, fmt.Errorf("invalid manifest document: %w", err)
		}

		var target interface{}
		switch meta.Kind {
		case "Deployment":
			if out.Deployment != nil {
				return nil, fmt.Errorf("duplicate %s document", meta.Kind)
			}
			out.Deployment = &appsv1.Deployment{}
			target = out.Deployment
		case "Service":
			if out.Service != nil {
				return nil, fmt.Errorf("duplicate %s document", meta.Kind)
			}
			out.Service = &corev1.Service{}
			target = out.Service
		case "Ingress":
			if out.Ingress != nil {
				return nil, fmt.Errorf("duplicate %s document", meta.Kind)
			}
			out.Ingress = &networkingv1.Ingress{}
			target = out.Ingress
		case "PersistentVolumeClaim":
			if out.PVC != nil {
				return nil, fmt.Errorf("duplicate %s document", meta.Kind)
			}
			out.PVC = &corev1.PersistentVolumeClaim{}
			target = out.PVC
		default:
			return nil, fmt.Errorf("unexpected manifest kind %q", meta.Kind)
		}

		if err := yaml.UnmarshalStrict(doc, target); err != nil {
			return nil, fmt.Errorf("invalid %s document: %w", meta.Kind, err)
		}
	}

	var missing []string
	if out.Deployment == nil {
		missing = append(missing, "Deployment")
	}
	if out.Service == nil {
		missing = append(missing, "Service")
	}
	if out.Ingress == nil {
		missing = append(missing, "Ingress")
	}
	if out.PVC == nil {
		missing = append(missing, "PersistentVolumeClaim")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("manifests missing documents: %s", strings.Join(missing, ", "))
	}

	return out, nil
}

func splitDocuments(stream string) ([][]byte, error) {
	reader := utilyaml.NewYAMLReader(bufio.NewReader(strings.NewReader(stream)))

	var docs [][]byte
	for {
		doc, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if strings.TrimSpace(string(doc)) == "" || strings.TrimSpace(string(doc)) == "---" {
			continue
		}
		docs = append(docs, doc)
	}
	return docs, nil
}
