// Package catalog holds the static proposal sets and endpoint presets a
// tunnel is parameterized with. Nothing here is mutable at runtime.
package catalog

import (
	"sort"

	"github.com/luscis/vpnsim/pkg/models"
	"github.com/luscis/vpnsim/pkg/schema"
)

var ikeProposals = map[string]schema.IKEProposal{
	"ike-aes256-sha256-modp2048": {
		ID:         "ike-aes256-sha256-modp2048",
		Name:       "AES-256 / SHA-256 / MODP-2048",
		Encryption: "aes256",
		Integrity:  "sha256",
		PRF:        "prfsha256",
		DHGroup:    "modp2048",
		Lifetime:   28800,
	},
	"ike-aes128-sha1-modp1024": {
		ID:         "ike-aes128-sha1-modp1024",
		Name:       "AES-128 / SHA-1 / MODP-1024",
		Encryption: "aes128",
		Integrity:  "sha1",
		PRF:        "prfsha1",
		DHGroup:    "modp1024",
		Lifetime:   86400,
	},
	"ike-aes256gcm-sha384-ecp384": {
		ID:         "ike-aes256gcm-sha384-ecp384",
		Name:       "AES-256-GCM / PRF-SHA384 / ECP-384",
		Encryption: "aes256gcm16",
		Integrity:  "none",
		PRF:        "prfsha384",
		DHGroup:    "ecp384",
		Lifetime:   28800,
	},
	"ike-3des-md5-modp1024": {
		ID:         "ike-3des-md5-modp1024",
		Name:       "3DES / MD5 / MODP-1024 (legacy)",
		Encryption: "3des",
		Integrity:  "md5",
		PRF:        "prfmd5",
		DHGroup:    "modp1024",
		Lifetime:   86400,
	},
}

var ipsecProposals = map[string]schema.IPSecProposal{
	"esp-aes256-sha256-modp2048": {
		ID:         "esp-aes256-sha256-modp2048",
		Name:       "ESP AES-256 / SHA-256 / PFS MODP-2048",
		Encryption: "aes256",
		Integrity:  "sha256",
		PFSGroup:   "modp2048",
		Lifetime:   3600,
	},
	"esp-aes128-sha1": {
		ID:         "esp-aes128-sha1",
		Name:       "ESP AES-128 / SHA-1 / no PFS",
		Encryption: "aes128",
		Integrity:  "sha1",
		Lifetime:   3600,
	},
	"esp-aes256gcm16": {
		ID:         "esp-aes256gcm16",
		Name:       "ESP AES-256-GCM-16 / PFS ECP-384",
		Encryption: "aes256gcm16",
		Integrity:  "none",
		PFSGroup:   "ecp384",
		Lifetime:   3600,
	},
	"esp-3des-md5": {
		ID:         "esp-3des-md5",
		Name:       "ESP 3DES / MD5 (legacy)",
		Encryption: "3des",
		Integrity:  "md5",
		Lifetime:   28800,
	},
}

var endpoints = map[string]schema.Endpoint{
	"hq": {
		ID:             "hq",
		Name:           "Headquarters",
		PublicIP:       "203.0.113.1",
		PrivateNetwork: "192.168.1.0/24",
	},
	"branch": {
		ID:             "branch",
		Name:           "Branch Office",
		PublicIP:       "198.51.100.1",
		PrivateNetwork: "192.168.10.0/24",
	},
	"datacenter": {
		ID:             "datacenter",
		Name:           "Data Center",
		PublicIP:       "192.0.2.10",
		PrivateNetwork: "10.0.0.0/16",
	},
	"cloud": {
		ID:             "cloud",
		Name:           "Cloud VPC",
		PublicIP:       "100.64.0.1",
		PrivateNetwork: "172.16.0.0/16",
	},
	"roadwarrior": {
		ID:             "roadwarrior",
		Name:           "Remote User",
		PublicIP:       "198.18.0.25",
		PrivateNetwork: "10.10.10.0/24",
	},
}

var networks = map[string]schema.Network{
	"hq-lan":      {ID: "hq-lan", Name: "HQ LAN", Prefix: "192.168.1.0/24"},
	"branch-lan":  {ID: "branch-lan", Name: "Branch LAN", Prefix: "192.168.10.0/24"},
	"dc-servers":  {ID: "dc-servers", Name: "DC Servers", Prefix: "10.0.0.0/16"},
	"cloud-vpc":   {ID: "cloud-vpc", Name: "Cloud VPC", Prefix: "172.16.0.0/16"},
	"remote-pool": {ID: "remote-pool", Name: "Remote Access Pool", Prefix: "10.10.10.0/24"},
}

func GetIKE(id string) (schema.IKEProposal, error) {
	if obj, ok := ikeProposals[id]; ok {
		return obj, nil
	}
	return schema.IKEProposal{}, models.NewError(models.ProposalNotFound, "ike proposal %q", id)
}

func GetIPSec(id string) (schema.IPSecProposal, error) {
	if obj, ok := ipsecProposals[id]; ok {
		return obj, nil
	}
	return schema.IPSecProposal{}, models.NewError(models.ProposalNotFound, "ipsec proposal %q", id)
}

func GetEndpoint(id string) (schema.Endpoint, error) {
	if obj, ok := endpoints[id]; ok {
		return obj, nil
	}
	return schema.Endpoint{}, models.NewError(models.EndpointNotFound, "endpoint %q", id)
}

func GetNetwork(id string) (schema.Network, bool) {
	obj, ok := networks[id]
	return obj, ok
}

func IKEProposals() []schema.IKEProposal {
	items := make([]schema.IKEProposal, 0, len(ikeProposals))
	for _, obj := range ikeProposals {
		items = append(items, obj)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items
}

func IPSecProposals() []schema.IPSecProposal {
	items := make([]schema.IPSecProposal, 0, len(ipsecProposals))
	for _, obj := range ipsecProposals {
		items = append(items, obj)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items
}

func Endpoints() []schema.Endpoint {
	items := make([]schema.Endpoint, 0, len(endpoints))
	for _, obj := range endpoints {
		items = append(items, obj)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items
}

func Networks() []schema.Network {
	items := make([]schema.Network, 0, len(networks))
	for _, obj := range networks {
		items = append(items, obj)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items
}

// All is the full preset map as served to presentation layers.
func All() schema.Catalog {
	return schema.Catalog{
		IKE:       IKEProposals(),
		IPSec:     IPSecProposals(),
		Endpoints: Endpoints(),
		Networks:  Networks(),
	}
}
