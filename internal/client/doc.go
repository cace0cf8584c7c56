// Package client speaks the groupshare frame protocol to a server. Each
// method sends one request and reads its response; listing methods also
// drain the queued items with continue requests.
package client
