// Package frame owns the repository event stream frame contract.
//
// A frame is a DAG-CBOR header map immediately followed by an opaque body:
//
//	frame  := header body
//	header := {"op": 1 | -1, "t"?: text}
//	body   := remaining bytes
//
// There is no length prefix. The header ends where its CBOR encoding ends,
// so Decode finds the split point by decoding one value and taking the
// unconsumed remainder as the body. A header that consumes the whole
// buffer is not a frame.
//
// Ownership boundary:
// - header/body split and header interpretation
// - frame encoding for fixtures and tooling
// - body decoding belongs to the event package and the schema layer
package frame
