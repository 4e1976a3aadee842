package hooks

// ResourceType names the kind of an asynchronous resource. The built-in
// tags below cover the resource kinds originated by common I/O layers;
// embedders may introduce arbitrary new tags for their own resources.
type ResourceType string

// Built-in resource type tags.
const (
	TypeRoot        ResourceType = "ROOT"
	TypeTCPConn     ResourceType = "TCP_CONN"
	TypeTCPListener ResourceType = "TCP_LISTENER"
	TypeUDPConn     ResourceType = "UDP_CONN"
	TypeTimer       ResourceType = "TIMER"
	TypeImmediate   ResourceType = "IMMEDIATE"
	TypeSignal      ResourceType = "SIGNAL"
	TypeFileReq     ResourceType = "FILE_REQUEST"
	TypeDNSReq      ResourceType = "DNS_REQUEST"
	TypeWriteReq    ResourceType = "WRITE_REQUEST"
)
