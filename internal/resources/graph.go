package resources

import (
	"errors"
	"fmt"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"

	"github.com/imamik/magnum-capi/api/v1alpha1"
	"github.com/imamik/magnum-capi/internal/applier"
	"github.com/imamik/magnum-capi/internal/certs"
	"github.com/imamik/magnum-capi/internal/credentials"
)

// Step is the dependency level of a descriptor. Objects of a step may read
// objects of every earlier step.
type Step int

const (
	StepNamespace Step = iota + 1
	StepAddons
	StepCloudConfig
	StepCertificateAuthorities
	StepNodeGroups
	StepInfrastructure
	StepCluster
	StepAutoHealing
)

func (s Step) String() string {
	switch s {
	case StepNamespace:
		return "namespace"
	case StepAddons:
		return "addons"
	case StepCloudConfig:
		return "cloud-config"
	case StepCertificateAuthorities:
		return "certificate-authorities"
	case StepNodeGroups:
		return "node-groups"
	case StepInfrastructure:
		return "infrastructure"
	case StepCluster:
		return "cluster"
	case StepAutoHealing:
		return "auto-healing"
	default:
		return fmt.Sprintf("step(%d)", int(s))
	}
}

// Descriptor is the desired state of one object.
type Descriptor struct {
	Step   Step
	Object *unstructured.Unstructured
}

// Ref returns the reference of the described object.
func (d Descriptor) Ref() applier.Ref {
	return applier.RefFor(d.Object)
}

// Graph is an ordered list of descriptors.
type Graph []Descriptor

// Refs returns the references of every object of the given step.
func (g Graph) Refs(step Step) []applier.Ref {
	var refs []applier.Ref
	for _, d := range g {
		if d.Step == step {
			refs = append(refs, d.Ref())
		}
	}
	return refs
}

// After returns the descriptors of every step later than step.
func (g Graph) After(step Step) Graph {
	var out Graph
	for _, d := range g {
		if d.Step > step {
			out = append(out, d)
		}
	}
	return out
}

// Builder renders the objects of a cluster.
type Builder struct {
	// Namespace holds every object except the namespace itself
	Namespace string

	// AuthURL and RegionName are written into the cloud config
	AuthURL    string
	RegionName string

	// Interface is the identity endpoint interface (public, internal, admin)
	Interface string

	// CACert is an optional PEM bundle trusted by the cloud providers
	CACert string

	// Manifests holds the rendered addon manifests
	Manifests map[Addon][]byte
}

// ClusterGraph returns every object of a fresh cluster in apply order.
//
// cred is the credential issued for the cluster. cas holds the certificate
// authorities to create; kinds missing from it are assumed to exist already
// and are left out of the graph. The MachineHealthCheck is only part of the
// graph when AutoHealingEnabled reports true.
func (b *Builder) ClusterGraph(c v1alpha1.Cluster, cred *credentials.Credential, cas map[certs.Kind]*certs.KeyPair) (Graph, error) {
	if cred == nil {
		return nil, errors.New("a credential is required to build the cluster graph")
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}

	g, err := b.Prelude(c)
	if err != nil {
		return nil, err
	}

	secret, err := b.cloudConfigSecret(c, cred)
	if err != nil {
		return nil, err
	}
	g = append(g, Descriptor{Step: StepCloudConfig, Object: secret})

	for _, kind := range certs.AllKinds {
		pair, ok := cas[kind]
		if !ok {
			continue
		}
		ca, err := b.certificateAuthoritySecret(c, kind, pair)
		if err != nil {
			return nil, err
		}
		g = append(g, Descriptor{Step: StepCertificateAuthorities, Object: ca})
	}

	for _, ng := range c.NodeGroups {
		g = append(g, b.NodeGroupGraph(c, ng)...)
	}

	g = append(g,
		Descriptor{Step: StepInfrastructure, Object: b.openStackCluster(c)},
		Descriptor{Step: StepCluster, Object: b.cluster(c)},
	)

	if AutoHealingEnabled(c) {
		g = append(g, Descriptor{Step: StepAutoHealing, Object: b.MachineHealthCheck(c)})
	}

	return g, nil
}

// Prelude returns the objects that do not depend on the cluster credential:
// the namespace and the addon distribution.
func (b *Builder) Prelude(c v1alpha1.Cluster) (Graph, error) {
	ns, err := b.namespace()
	if err != nil {
		return nil, err
	}
	g := Graph{{Step: StepNamespace, Object: ns}}

	for _, addon := range Addons {
		cm, err := b.addonConfigMap(c, addon)
		if err != nil {
			return nil, err
		}
		g = append(g,
			Descriptor{Step: StepAddons, Object: cm},
			Descriptor{Step: StepAddons, Object: b.addonResourceSet(c, addon)},
		)
	}
	return g, nil
}

// NodeGroupGraph returns the objects of one node group in apply order. The
// bootstrap configuration reads the cloud config secret by reference, so no
// credential is needed here.
func (b *Builder) NodeGroupGraph(c v1alpha1.Cluster, ng v1alpha1.NodeGroup) Graph {
	return KindOf(ng).Resources(b, c, ng)
}

func (b *Builder) namespace() (*unstructured.Unstructured, error) {
	ns := &corev1.Namespace{
		ObjectMeta: metav1.ObjectMeta{Name: b.Namespace},
	}
	return fromTyped(NamespaceGVK, ns)
}
