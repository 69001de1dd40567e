package wizard

import (
	"fmt"

	"github.com/charmbracelet/huh"
)

// KubeTagOption represents a Kubernetes version offered for kube_tag.
type KubeTagOption struct {
	Value       string
	Label       string
	Description string
}

// KubeTags contains the Kubernetes versions offered by the wizard.
var KubeTags = []KubeTagOption{
	{Value: "v1.27.4", Label: "v1.27.4", Description: "Recommended"},
	{Value: "v1.26.7", Label: "v1.26.7", Description: ""},
	{Value: "v1.25.12", Label: "v1.25.12", Description: ""},
}

// DefaultKubeTag is the default Kubernetes version.
const DefaultKubeTag = "v1.27.4"

// MasterCountOptions offers odd control plane sizes for etcd quorum.
var MasterCountOptions = []huh.Option[int]{
	huh.NewOption("1 (Development)", 1),
	huh.NewOption("3 (HA - Recommended for production)", 3),
	huh.NewOption("5 (HA - Large clusters)", 5),
}

// WorkerCountOptions offers worker group sizes.
var WorkerCountOptions = workerCountOptions(10)

func workerCountOptions(max int) []huh.Option[int] {
	opts := make([]huh.Option[int], 0, max+1)
	opts = append(opts, huh.NewOption("0 (Scale up later)", 0))
	for i := 1; i <= max; i++ {
		opts = append(opts, huh.NewOption(fmt.Sprintf("%d", i), i))
	}
	return opts
}

// KubeTagsToOptions converts KubeTagOption slice to huh options.
func KubeTagsToOptions() []huh.Option[string] {
	opts := make([]huh.Option[string], len(KubeTags))
	for i, v := range KubeTags {
		label := v.Label
		if v.Description != "" {
			label = fmt.Sprintf("%s (%s)", v.Label, v.Description)
		}
		opts[i] = huh.NewOption(label, v.Value)
	}
	return opts
}
