// Package main runs the in-memory nostr relay used by nostrdm during
// development and tests. It stores accepted events and answers filtered
// subscriptions until it exits.
//
// Protocol (websocket, one JSON array per frame)
//
//	["EVENT", <event>]
//	    Verify and store the event; answer ["OK", <id>, <accepted>, <reason>].
//	    Events that fail signature verification are rejected.
//
//	["REQ", <sub id>, <filter>]
//	    Stream every stored event matching the filter as
//	    ["EVENT", <sub id>, <event>], then ["EOSE", <sub id>].
//
//	["CLOSE", <sub id>]
//	    Acknowledged silently. Subscriptions here are fetch-and-done; no
//	    live streaming of later events.
//
// Behaviour
//
//   - All state is held in memory and lost on process exit.
//   - The default listen address is :7447.
//
// The relay is intended for local use. It never sees plaintext or private
// keys; gift wraps are ciphertext signed by throwaway identities.
package main
