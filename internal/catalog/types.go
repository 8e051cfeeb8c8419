package catalog

// Entry is one node providing a service, as needed by the inventory
// builder.
type Entry struct {
	NodeName string
	Address  string
	Port     int
	Tags     []string
}

// Node is a catalog node with the attributes used for grouping and
// host variables.
type Node struct {
	Name            string            `json:"Node"`
	Address         string            `json:"Address"`
	Datacenter      string            `json:"Datacenter"`
	TaggedAddresses map[string]string `json:"TaggedAddresses"`
	Meta            map[string]string `json:"Meta"`
}

// NodeDetail is the response of the per-node catalog endpoint: the
// node itself plus the services registered on it.
type NodeDetail struct {
	Node     Node                   `json:"Node"`
	Services map[string]NodeService `json:"Services"`
}

// NodeService is a service as listed on a single node.
type NodeService struct {
	Service string   `json:"Service"`
	Tags    []string `json:"Tags"`
	Address string   `json:"Address"`
	Port    int      `json:"Port"`
}

// serviceEntry is the wire shape of the per-service catalog endpoint.
type serviceEntry struct {
	Node           string   `json:"Node"`
	Address        string   `json:"Address"`
	ServiceAddress string   `json:"ServiceAddress"`
	ServicePort    int      `json:"ServicePort"`
	ServiceTags    []string `json:"ServiceTags"`
}

func (se serviceEntry) entry() Entry {
	addr := se.ServiceAddress
	if addr == "" {
		addr = se.Address
	}
	tags := se.ServiceTags
	if tags == nil {
		tags = []string{}
	}
	return Entry{
		NodeName: se.Node,
		Address:  addr,
		Port:     se.ServicePort,
		Tags:     tags,
	}
}
