package schema

type Endpoint struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	PublicIP       string `json:"publicIP"`
	PrivateNetwork string `json:"privateNetwork"`
}

type IKEProposal struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Encryption string `json:"encryption"`
	Integrity  string `json:"integrity"`
	PRF        string `json:"prf"`
	DHGroup    string `json:"dhGroup"`
	Lifetime   int    `json:"lifetime"`
}

type IPSecProposal struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Encryption string `json:"encryption"`
	Integrity  string `json:"integrity"`
	PFSGroup   string `json:"pfsGroup,omitempty"`
	Lifetime   int    `json:"lifetime"`
}

type Network struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Prefix string `json:"prefix"`
}

type Catalog struct {
	IKE       []IKEProposal   `json:"ike"`
	IPSec     []IPSecProposal `json:"ipsec"`
	Endpoints []Endpoint      `json:"endpoints,omitempty"`
	Networks  []Network       `json:"networks,omitempty"`
}
