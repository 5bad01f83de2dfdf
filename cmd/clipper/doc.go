// Command clipper is the control CLI for the clip pipeline daemon. It talks
// to clipperd over its unix socket.
package main
