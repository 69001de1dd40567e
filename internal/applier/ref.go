package applier

import (
	"fmt"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime/schema"
)

// Ref identifies a single resource in the management cluster.
type Ref struct {
	schema.GroupVersionKind
	Namespace string
	Name      string
}

// RefFor returns the reference of an object.
func RefFor(obj *unstructured.Unstructured) Ref {
	return Ref{
		GroupVersionKind: obj.GroupVersionKind(),
		Namespace:        obj.GetNamespace(),
		Name:             obj.GetName(),
	}
}

func (r Ref) String() string {
	if r.Namespace == "" {
		return fmt.Sprintf("%s %s", r.Kind, r.Name)
	}
	return fmt.Sprintf("%s %s/%s", r.Kind, r.Namespace, r.Name)
}
