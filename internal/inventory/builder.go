package inventory

import (
	"sort"

	"github.com/wilfriedroset/consul-awx/internal/catalog"
	"github.com/wilfriedroset/consul-awx/internal/util"
)

// Options selects the optional grouping features recovered from node
// data. The zero value produces the plain per-service inventory.
type Options struct {
	// TagGroups adds one subgroup per service tag, registered as a
	// child of the service group.
	TagGroups bool
}

// Build transforms catalog data into an inventory document: one group
// per sanitized service name whose members are the entries' node names
// in catalog response order.
//
// Services are merged in sorted name order. When a host serves several
// services its address and port come from the last service in that
// order, and its tags are the order-preserving union across services.
func Build(data map[string][]catalog.Entry, opts Options) *Document {
	doc := NewDocument()

	services := make([]string, 0, len(data))
	for name := range data {
		services = append(services, name)
	}
	sort.Strings(services)

	for _, svc := range services {
		groupName := util.SanitizeGroup(svc)
		group := doc.Group(groupName)

		for _, e := range data[svc] {
			group.Hosts = append(group.Hosts, e.NodeName)

			rec := doc.record(e.NodeName)
			rec["address"] = e.Address
			rec["port"] = e.Port
			rec["tags"] = unionTags(rec["tags"], e.Tags)

			if opts.TagGroups {
				for _, tag := range e.Tags {
					sub := groupName + "_" + util.SanitizeGroup(tag)
					sg := doc.Group(sub)
					sg.Hosts = append(sg.Hosts, e.NodeName)
					group.AddChild(sub)
				}
			}
		}
	}

	return doc
}

// NodeOptions controls which parts of the node enrichment apply.
type NodeOptions struct {
	// TaggedAddress selects the tagged address exposed as
	// ansible_host.
	TaggedAddress string
	// Groups adds the datacenter and node-meta groups plus the
	// all/ungrouped skeleton. Host variables are enriched either way.
	Groups bool
}

// AddNodes enriches a document with catalog node data: typed meta host
// variables, the node's datacenter, ansible_host from the selected
// tagged address, and, when opts.Groups is set, one group per
// datacenter, one group per node-meta key/value and the all/ungrouped
// skeleton Ansible expects from a full inventory.
func AddNodes(doc *Document, nodes []catalog.Node, opts NodeOptions) {
	if opts.Groups {
		doc.Group("ungrouped")
	}

	for _, node := range nodes {
		rec := doc.record(node.Name)

		if node.Datacenter != "" {
			rec["datacenter"] = node.Datacenter
			if opts.Groups {
				dc := doc.Group(util.SanitizeGroup(node.Datacenter))
				dc.Hosts = append(dc.Hosts, node.Name)
			}
		}

		if opts.TaggedAddress != "" {
			if addr := node.TaggedAddresses[opts.TaggedAddress]; addr != "" {
				rec["ansible_host"] = addr
			}
		}

		for key, raw := range node.Meta {
			if raw == "" {
				continue
			}
			value := util.CoerceMetaValue(raw)
			rec[key] = value

			if !opts.Groups {
				continue
			}

			// A false meta value means the node is *not* in the
			// group, so no group is created for it.
			var groupName string
			switch v := value.(type) {
			case bool:
				if !v {
					continue
				}
				groupName = key
			default:
				groupName = key + "_" + raw
			}
			groupName = util.SanitizeGroup(groupName)
			g := doc.Group(groupName)
			g.Hosts = append(g.Hosts, node.Name)
		}
	}

	if !opts.Groups {
		return
	}

	all := doc.Group("all")
	children := []string{}
	for name := range doc.Groups {
		if name == "all" {
			continue
		}
		children = append(children, name)
	}
	sort.Strings(children)
	all.Children = children
}

// BuildHostRecord builds the variable record for a single node from
// the per-node catalog endpoint, applying the same merge policy as
// Build: services in sorted name order, last one wins for address and
// port, tags unioned. A nil detail (unknown host) yields an empty
// record.
func BuildHostRecord(detail *catalog.NodeDetail, taggedAddress string) map[string]any {
	rec := map[string]any{}
	if detail == nil {
		return rec
	}

	node := detail.Node
	rec["address"] = node.Address
	if node.Datacenter != "" {
		rec["datacenter"] = node.Datacenter
	}
	if taggedAddress != "" {
		if addr := node.TaggedAddresses[taggedAddress]; addr != "" {
			rec["ansible_host"] = addr
		}
	}
	for key, raw := range node.Meta {
		if raw == "" {
			continue
		}
		rec[key] = util.CoerceMetaValue(raw)
	}

	services := make([]string, 0, len(detail.Services))
	for name := range detail.Services {
		services = append(services, name)
	}
	sort.Strings(services)

	for _, name := range services {
		svc := detail.Services[name]
		if svc.Address != "" {
			rec["address"] = svc.Address
		}
		rec["port"] = svc.Port
		rec["tags"] = unionTags(rec["tags"], svc.Tags)
	}

	return rec
}

func (d *Document) record(host string) map[string]any {
	rec, ok := d.Hostvars[host]
	if !ok {
		rec = map[string]any{}
		d.Hostvars[host] = rec
	}
	return rec
}

// unionTags merges tag lists preserving first-seen order.
func unionTags(existing any, add []string) []string {
	tags, _ := existing.([]string)
	if tags == nil {
		tags = []string{}
	}
	for _, t := range add {
		seen := false
		for _, have := range tags {
			if have == t {
				seen = true
				break
			}
		}
		if !seen {
			tags = append(tags, t)
		}
	}
	return tags
}
