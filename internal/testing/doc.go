// Package testing provides test utilities, builders, and fixtures shared by
// the driver packages.
//
//   - FakeApplier: in-memory management cluster with server-side apply
//     style merging and resource versions
//   - MockIdentity: testify mock of the identity API
//   - ClusterBuilder: fluent builder for cluster records
//   - fixtures: status blocks written by the Cluster API controllers
//
// Usage:
//
//	c := testutil.NewClusterBuilder().WithWorker("gpu", 1).Build(t)
//	fake := testutil.NewFakeApplier()
//	fake.SetStatus(ref, testutil.ControlPlaneStatus(true, "v1.27.4", ""))
package testing
