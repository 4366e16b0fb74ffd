/*
Package session manages workspaces: independent sandboxes that each own a
Runner and the container it animates.

Access to a workspace is serialized with reference-counted local locks and,
when configured, a ports.DistributedLocker so replicas sharing a preset
store do not interleave edits.
*/
package session
