package ipc

import (
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"time"
)

// Client provides RPC access to the daemon.
type Client struct {
	conn   net.Conn
	client *rpc.Client
}

// Dial connects to the IPC server at the given socket path.
func Dial(path string) (*Client, error) {
	conn, err := net.DialTimeout("unix", path, 2*time.Second)
	if err != nil {
		return nil, err
	}
	rpcClient := rpc.NewClientWithCodec(jsonrpc.NewClientCodec(conn))
	return &Client{conn: conn, client: rpcClient}, nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	if c.client != nil {
		_ = c.client.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// Say sends one line of user text to the named session.
func (c *Client) Say(sessionID, text string) (*SayResponse, error) {
	var resp SayResponse
	if err := c.client.Call("Clipper.Say", SayRequest{SessionID: sessionID, Text: text}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Cancel discards the named session's collected state.
func (c *Client) Cancel(sessionID string) (*CancelResponse, error) {
	var resp CancelResponse
	if err := c.client.Call("Clipper.Cancel", CancelRequest{SessionID: sessionID}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Await waits up to wait for the run to finish.
func (c *Client) Await(runID string, wait time.Duration) (*AwaitResponse, error) {
	var resp AwaitResponse
	req := AwaitRequest{RunID: runID, WaitMillis: int(wait / time.Millisecond)}
	if err := c.client.Call("Clipper.Await", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// LogTail returns log lines from the daemon.
func (c *Client) LogTail(req LogTailRequest) (*LogTailResponse, error) {
	var resp LogTailResponse
	if err := c.client.Call("Clipper.LogTail", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Status retrieves the daemon status.
func (c *Client) Status() (*StatusResponse, error) {
	var resp StatusResponse
	if err := c.client.Call("Clipper.Status", StatusRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Stop asks the daemon process to shut down.
func (c *Client) Stop() (*StopResponse, error) {
	var resp StopResponse
	if err := c.client.Call("Clipper.Stop", StopRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
