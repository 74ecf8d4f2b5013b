package schema

// Event names logged by the canvas editor for every mutation.
const (
	EventNodeAdded      = "node_added"
	EventNodeUpdated    = "node_updated"
	EventNodesRemoved   = "nodes_removed"
	EventNodesMoved     = "nodes_moved"
	EventEdgeAdded      = "edge_added"
	EventEdgeUpdated    = "edge_updated"
	EventEdgesRemoved   = "edges_removed"
	EventConnectRefused = "connect_refused"
	EventPriorityReset  = "priorities_reset"
	EventAutoFixed      = "auto_fixed"
	EventImported       = "workflow_imported"
	EventStateLoaded    = "state_loaded"
	EventStateCleared   = "state_cleared"
	EventPersistFailed  = "persist_failed"
)
