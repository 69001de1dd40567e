package testing

import (
	"context"
	"reflect"
	"strconv"
	"strings"
	"sync"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime/schema"

	"github.com/imamik/magnum-capi/internal/applier"
)

// Call records one applier invocation.
type Call struct {
	Verb string
	Ref  applier.Ref
}

// FakeApplier is an in-memory applier.Applier.
//
// Apply merges the desired object into the stored one the way server-side
// apply does for a single field manager: fields set by others (status,
// controller written spec fields) survive, and the resource version only
// changes when the merged content differs.
type FakeApplier struct {
	mu      sync.Mutex
	objects map[applier.Ref]*unstructured.Unstructured
	calls   []Call
	version int

	// Errors makes the given verb fail with the error.
	Errors map[string]error
}

var _ applier.Applier = (*FakeApplier)(nil)

// NewFakeApplier creates an empty fake.
func NewFakeApplier() *FakeApplier {
	return &FakeApplier{
		objects: make(map[applier.Ref]*unstructured.Unstructured),
		Errors:  make(map[string]error),
	}
}

func notFound(ref applier.Ref) error {
	return apierrors.NewNotFound(schema.GroupResource{Group: ref.Group, Resource: strings.ToLower(ref.Kind)}, ref.Name)
}

func (f *FakeApplier) record(verb string, ref applier.Ref) error {
	f.calls = append(f.calls, Call{Verb: verb, Ref: ref})
	return f.Errors[verb]
}

func (f *FakeApplier) nextVersion() string {
	f.version++
	return strconv.Itoa(f.version)
}

func (f *FakeApplier) Apply(_ context.Context, obj *unstructured.Unstructured) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	ref := applier.RefFor(obj)
	if err := f.record("apply", ref); err != nil {
		return err
	}

	existing, ok := f.objects[ref]
	if !ok {
		stored := obj.DeepCopy()
		stored.SetResourceVersion(f.nextVersion())
		f.objects[ref] = stored
		return nil
	}

	merged := existing.DeepCopy()
	mergeInto(merged.Object, obj.DeepCopy().Object)
	if !reflect.DeepEqual(merged.Object, existing.Object) {
		merged.SetResourceVersion(f.nextVersion())
	}
	f.objects[ref] = merged
	return nil
}

// mergeInto copies src over dst, recursing into nested maps.
func mergeInto(dst, src map[string]interface{}) {
	for k, v := range src {
		srcMap, srcIsMap := v.(map[string]interface{})
		dstMap, dstIsMap := dst[k].(map[string]interface{})
		if srcIsMap && dstIsMap {
			mergeInto(dstMap, srcMap)
			continue
		}
		dst[k] = v
	}
}

func (f *FakeApplier) Delete(_ context.Context, ref applier.Ref) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.record("delete", ref); err != nil {
		return err
	}
	delete(f.objects, ref)
	return nil
}

func (f *FakeApplier) Get(_ context.Context, ref applier.Ref) (*unstructured.Unstructured, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.record("get", ref); err != nil {
		return nil, err
	}
	obj, ok := f.objects[ref]
	if !ok {
		return nil, notFound(ref)
	}
	return obj.DeepCopy(), nil
}

func (f *FakeApplier) Exists(_ context.Context, ref applier.Ref) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.record("exists", ref); err != nil {
		return false, err
	}
	_, ok := f.objects[ref]
	return ok, nil
}

func (f *FakeApplier) List(_ context.Context, gvk schema.GroupVersionKind, namespace string, selector map[string]string) ([]unstructured.Unstructured, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.record("list", applier.Ref{GroupVersionKind: gvk, Namespace: namespace}); err != nil {
		return nil, err
	}

	var items []unstructured.Unstructured
	for ref, obj := range f.objects {
		if ref.GroupVersionKind != gvk || ref.Namespace != namespace {
			continue
		}
		if matches(obj.GetLabels(), selector) {
			items = append(items, *obj.DeepCopy())
		}
	}
	return items, nil
}

func matches(labels, selector map[string]string) bool {
	for k, v := range selector {
		if labels[k] != v {
			return false
		}
	}
	return true
}

func (f *FakeApplier) Annotate(_ context.Context, ref applier.Ref, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.record("annotate", ref); err != nil {
		return err
	}
	obj, ok := f.objects[ref]
	if !ok {
		return notFound(ref)
	}
	annotations := obj.GetAnnotations()
	if annotations == nil {
		annotations = map[string]string{}
	}
	annotations[key] = value
	obj.SetAnnotations(annotations)
	obj.SetResourceVersion(f.nextVersion())
	return nil
}

// Put stores an object as if another controller had created it.
func (f *FakeApplier) Put(obj *unstructured.Unstructured) {
	f.mu.Lock()
	defer f.mu.Unlock()

	stored := obj.DeepCopy()
	stored.SetResourceVersion(f.nextVersion())
	f.objects[applier.RefFor(obj)] = stored
}

// Remove deletes an object without recording a call, e.g. to emulate
// garbage collection.
func (f *FakeApplier) Remove(ref applier.Ref) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, ref)
}

// Mutate changes a stored object the way another field owner would.
func (f *FakeApplier) Mutate(ref applier.Ref, fn func(obj *unstructured.Unstructured)) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	obj, ok := f.objects[ref]
	if !ok {
		return false
	}
	fn(obj)
	obj.SetResourceVersion(f.nextVersion())
	return true
}

// SetStatus replaces the status of a stored object.
func (f *FakeApplier) SetStatus(ref applier.Ref, status map[string]interface{}) bool {
	return f.Mutate(ref, func(obj *unstructured.Unstructured) {
		obj.Object["status"] = status
	})
}

// Object returns a copy of a stored object, or nil.
func (f *FakeApplier) Object(ref applier.Ref) *unstructured.Unstructured {
	f.mu.Lock()
	defer f.mu.Unlock()

	if obj, ok := f.objects[ref]; ok {
		return obj.DeepCopy()
	}
	return nil
}

// Has reports whether an object is stored.
func (f *FakeApplier) Has(ref applier.Ref) bool {
	return f.Object(ref) != nil
}

// ResourceVersions returns the resource version of every stored object.
func (f *FakeApplier) ResourceVersions() map[applier.Ref]string {
	f.mu.Lock()
	defer f.mu.Unlock()

	versions := make(map[applier.Ref]string, len(f.objects))
	for ref, obj := range f.objects {
		versions[ref] = obj.GetResourceVersion()
	}
	return versions
}

// Calls returns the recorded calls, optionally filtered by verb.
func (f *FakeApplier) Calls(verb string) []Call {
	f.mu.Lock()
	defer f.mu.Unlock()

	var calls []Call
	for _, c := range f.calls {
		if verb == "" || c.Verb == verb {
			calls = append(calls, c)
		}
	}
	return calls
}

// CountKind counts the calls of a verb against a kind.
func (f *FakeApplier) CountKind(verb, kind string) int {
	n := 0
	for _, c := range f.Calls(verb) {
		if c.Ref.Kind == kind {
			n++
		}
	}
	return n
}

// ResetCalls forgets the recorded calls.
func (f *FakeApplier) ResetCalls() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = nil
}
