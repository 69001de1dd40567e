package applier

import (
	"context"
	"encoding/json"
	"fmt"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/api/meta"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/labels"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/apimachinery/pkg/types"
	"k8s.io/client-go/discovery"
	"k8s.io/client-go/discovery/cached/memory"
	"k8s.io/client-go/dynamic"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/restmapper"
	"k8s.io/client-go/tools/clientcmd"
	"sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/imamik/magnum-capi/internal/metrics"
)

// Applier provides the management cluster operations the driver needs.
type Applier interface {
	// Apply creates or updates obj using Server-Side Apply.
	Apply(ctx context.Context, obj *unstructured.Unstructured) error

	// Delete deletes a resource, returning nil if not found.
	Delete(ctx context.Context, ref Ref) error

	// Get reads the current state of a resource from the API server.
	// A missing resource yields an error satisfying apierrors.IsNotFound.
	Get(ctx context.Context, ref Ref) (*unstructured.Unstructured, error)

	// Exists reports whether a resource is present.
	Exists(ctx context.Context, ref Ref) (bool, error)

	// List returns the resources of a kind in a namespace matching selector.
	List(ctx context.Context, gvk schema.GroupVersionKind, namespace string, selector map[string]string) ([]unstructured.Unstructured, error)

	// Annotate sets a single annotation with a merge patch.
	Annotate(ctx context.Context, ref Ref, key, value string) error
}

// client implements the Applier interface using the dynamic client.
type client struct {
	dynamicClient dynamic.Interface
	mapper        meta.RESTMapper
	fieldManager  string
}

// NewFromKubeconfig creates an Applier from kubeconfig bytes.
func NewFromKubeconfig(kubeconfig []byte, fieldManager string) (Applier, error) {
	restConfig, err := clientcmd.RESTConfigFromKubeConfig(kubeconfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create REST config from kubeconfig: %w", err)
	}
	return NewFromConfig(restConfig, fieldManager)
}

// NewFromConfig creates an Applier from a REST config.
func NewFromConfig(restConfig *rest.Config, fieldManager string) (Applier, error) {
	dynamicClient, err := dynamic.NewForConfig(restConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create dynamic client: %w", err)
	}

	discoveryClient, err := discovery.NewDiscoveryClientForConfig(restConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create discovery client: %w", err)
	}

	// The deferred mapper re-runs discovery on a miss, so Cluster API CRDs
	// installed after startup are picked up.
	mapper := restmapper.NewDeferredDiscoveryRESTMapper(memory.NewMemCacheClient(discoveryClient))

	return NewFromClients(dynamicClient, mapper, fieldManager), nil
}

// NewFromClients creates an Applier from pre-configured clients.
// This is useful for testing with fake clients.
func NewFromClients(dynamicClient dynamic.Interface, mapper meta.RESTMapper, fieldManager string) Applier {
	return &client{
		dynamicClient: dynamicClient,
		mapper:        mapper,
		fieldManager:  fieldManager,
	}
}

// resourceFor maps a kind to its namespaced or cluster-scoped resource interface.
func (c *client) resourceFor(gvk schema.GroupVersionKind, namespace string) (dynamic.ResourceInterface, error) {
	if gvk.Kind == "" {
		return nil, fmt.Errorf("object has no kind set")
	}

	mapping, err := c.mapper.RESTMapping(gvk.GroupKind(), gvk.Version)
	if err != nil {
		return nil, fmt.Errorf("failed to get REST mapping for %v: %w", gvk, err)
	}

	resourceInterface := c.dynamicClient.Resource(mapping.Resource)
	if mapping.Scope.Name() == meta.RESTScopeNameNamespace {
		if namespace == "" {
			return nil, fmt.Errorf("namespace is required for %s", gvk.Kind)
		}
		return resourceInterface.Namespace(namespace), nil
	}
	return resourceInterface, nil
}

// Apply applies a single object using Server-Side Apply.
func (c *client) Apply(ctx context.Context, obj *unstructured.Unstructured) (err error) {
	ref := RefFor(obj)
	defer func() { metrics.RecordApplierRequest("apply", ref.Kind, err) }()

	if obj.GetName() == "" {
		return fmt.Errorf("object %s has no name set", ref.Kind)
	}

	resource, err := c.resourceFor(ref.GroupVersionKind, ref.Namespace)
	if err != nil {
		return err
	}

	data, err := obj.MarshalJSON()
	if err != nil {
		return fmt.Errorf("failed to marshal %s to JSON: %w", ref, err)
	}

	force := true
	_, err = resource.Patch(ctx, ref.Name, types.ApplyPatchType, data, metav1.PatchOptions{
		FieldManager: c.fieldManager,
		Force:        &force,
	})
	if err != nil {
		return fmt.Errorf("failed to apply %s: %w", ref, err)
	}

	log.FromContext(ctx).V(1).Info("applied resource", "resource", ref.String())
	return nil
}

// Delete deletes a resource with background propagation, returning nil if not found.
func (c *client) Delete(ctx context.Context, ref Ref) (err error) {
	defer func() { metrics.RecordApplierRequest("delete", ref.Kind, err) }()

	resource, err := c.resourceFor(ref.GroupVersionKind, ref.Namespace)
	if err != nil {
		return err
	}

	propagation := metav1.DeletePropagationBackground
	err = resource.Delete(ctx, ref.Name, metav1.DeleteOptions{PropagationPolicy: &propagation})
	if err != nil && !apierrors.IsNotFound(err) {
		return fmt.Errorf("failed to delete %s: %w", ref, err)
	}

	log.FromContext(ctx).V(1).Info("deleted resource", "resource", ref.String())
	return nil
}

// Get reads a resource. Wrapped errors still satisfy apierrors.IsNotFound.
func (c *client) Get(ctx context.Context, ref Ref) (_ *unstructured.Unstructured, err error) {
	defer func() { metrics.RecordApplierRequest("get", ref.Kind, err) }()

	resource, err := c.resourceFor(ref.GroupVersionKind, ref.Namespace)
	if err != nil {
		return nil, err
	}

	obj, err := resource.Get(ctx, ref.Name, metav1.GetOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get %s: %w", ref, err)
	}
	return obj, nil
}

// Exists reports whether a resource is present.
func (c *client) Exists(ctx context.Context, ref Ref) (bool, error) {
	_, err := c.Get(ctx, ref)
	if err == nil {
		return true, nil
	}
	if apierrors.IsNotFound(err) {
		return false, nil
	}
	return false, err
}

// List returns resources of a kind matching a label selector.
func (c *client) List(ctx context.Context, gvk schema.GroupVersionKind, namespace string, selector map[string]string) (_ []unstructured.Unstructured, err error) {
	defer func() { metrics.RecordApplierRequest("list", gvk.Kind, err) }()

	resource, err := c.resourceFor(gvk, namespace)
	if err != nil {
		return nil, err
	}

	list, err := resource.List(ctx, metav1.ListOptions{
		LabelSelector: labels.SelectorFromSet(selector).String(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list %s in %s: %w", gvk.Kind, namespace, err)
	}
	return list.Items, nil
}

// Annotate sets one annotation using a JSON merge patch, leaving every other
// field untouched.
func (c *client) Annotate(ctx context.Context, ref Ref, key, value string) (err error) {
	defer func() { metrics.RecordApplierRequest("annotate", ref.Kind, err) }()

	resource, err := c.resourceFor(ref.GroupVersionKind, ref.Namespace)
	if err != nil {
		return err
	}

	patch, err := json.Marshal(map[string]any{
		"metadata": map[string]any{
			"annotations": map[string]string{key: value},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to build annotation patch: %w", err)
	}

	if _, err = resource.Patch(ctx, ref.Name, types.MergePatchType, patch, metav1.PatchOptions{
		FieldManager: c.fieldManager,
	}); err != nil {
		return fmt.Errorf("failed to annotate %s: %w", ref, err)
	}

	log.FromContext(ctx).V(1).Info("annotated resource", "resource", ref.String(), "annotation", key)
	return nil
}
