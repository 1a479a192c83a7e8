/*
Package kit is the component catalog: the typed building blocks a surface
tree is composed of (Text, Section, Button, select menus, Modal, Home, ...)
and the aggregation rules that assemble their Block Kit output nodes.

Each component implements Element: Build produces the partial output node for
the component's own properties, and ChildElements lists the children the
reconciler appends into it afterwards. How an appended child lands in its
parent (list entry, single slot, text concatenation, selected-option
extraction) is decided by Append, keyed on the parent node's discriminator.
*/
package kit
