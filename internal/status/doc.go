// Package status folds the observed state of the Cluster API objects of a
// cluster into the CREATE/UPDATE/DELETE x IN_PROGRESS/COMPLETE/FAILED
// lifecycle of the cluster record.
//
// A refresh never blocks. When the child objects are not there yet it
// returns the record unchanged and the caller refreshes again later.
package status
