package validator

import (
	"fmt"

	"github.com/elskow/deployit/internal/pipeline/types"
)

// CheckConsistency decodes the manifests and checks they still name the
// descriptor's workload, image, port and host. Other edits are left alone.
func (v *ProjectValidator) CheckConsistency(manifests types.Manifests, d *types.ProjectDescriptor, image string) error {
	decoded, err := DecodeManifests(manifests)
	if err != nil {
		return err
	}

	var mismatches []string
	check := func(field, got, want string) {
		if got != want {
			mismatches = append(mismatches, fmt.Sprintf("%s is %q, want %q", field, got, want))
		}
	}

	check("deployment name", decoded.Deployment.Name, d.Name+"-deployment")
	check("claim name", decoded.PVC.Name, d.Name+"-data-volume-claim")

	containers := decoded.Deployment.Spec.Template.Spec.Containers
	if len(containers) == 0 {
		mismatches = append(mismatches, "deployment has no containers")
	} else {
		check("image", containers[0].Image, image)
		port := ""
		if len(containers[0].Ports) > 0 {
			port = fmt.Sprint(containers[0].Ports[0].ContainerPort)
		}
		check("container port", port, fmt.Sprint(d.InternalPort))
	}

	host := ""
	if rules := decoded.Ingress.Spec.Rules; len(rules) > 0 {
		host = rules[0].Host
	}
	check("ingress host", host, d.Host)

	if len(mismatches) > 0 {
		return &types.StaleManifestError{Mismatches: mismatches}
	}
	return nil
}
