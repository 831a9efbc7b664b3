// Package message orchestrates the direct-message flows: composing and
// publishing the dual gift wraps outbound, and fetching, unwrapping and
// persisting wraps inbound. The crypto lives in protocol/giftwrap; the
// network in relay; this service only wires them per the delivery rules.
package message
