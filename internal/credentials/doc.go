// Package credentials loads the server's TLS identity and client trust
// anchors from password-protected PKCS#12 containers and builds the mutual
// TLS configuration the acceptor serves with.
//
// Client certificate enforcement is the only authentication mechanism in the
// system; the protocol layer trusts any request that arrives on a
// handshake-completed connection. Credential failures are therefore fatal at
// startup.
//
// [Provider] additionally supports live rotation: it watches the container
// files and atomically swaps the active configuration when they change, so a
// certificate rollover does not require a restart.
package credentials
