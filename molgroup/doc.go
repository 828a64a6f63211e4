// Package molgroup implements MoleculeGroup, an ordered, indexed container of
// molecule views, and MolGroups, a registry of groups that keeps three
// indexes consistent with the live groups: group position to number, group
// name to numbers, and molecule number to the groups that contain it.
//
// Both types are copy-on-write values. Their trees are github.com/google/btree
// trees, whose Clone is lazy, so copying a group or a whole registry (for a
// checkpoint, say) costs O(1) and a later change only copies the nodes it
// touches. Every mutating method works on such a copy and only replaces the
// receiver's state once everything, indexes included, has succeeded.
package molgroup
