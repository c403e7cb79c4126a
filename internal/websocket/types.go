// internal/websocket/types.go
package websocket

// RPCRequest is a method call from the browser frontend
type RPCRequest struct {
	ID     string        `json:"id"`     // request id, matched to the response
	Method string        `json:"method"` // method name, e.g. "AddChapter"
	Params []interface{} `json:"params"` // positional arguments
}

// RPCResponse answers one request
type RPCResponse struct {
	ID     string      `json:"id"`
	Result interface{} `json:"result,omitempty"`
	Error  string      `json:"error,omitempty"`
}

// WSEvent is a server-push event
type WSEvent struct {
	Type    string      `json:"type"` // event type, e.g. "time:changed"
	Payload interface{} `json:"payload"`
}

// WSMessage is the wire envelope
type WSMessage struct {
	// "rpc_request", "rpc_response" or "event"
	Kind string `json:"kind"`

	Request  *RPCRequest  `json:"request,omitempty"`
	Response *RPCResponse `json:"response,omitempty"`
	Event    *WSEvent     `json:"event,omitempty"`
}
