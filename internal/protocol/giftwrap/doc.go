// Package giftwrap implements the three-layer private message construction
// (NIP-17/NIP-59) and its inverse.
//
// Layers, innermost first:
//
//   - Rumor: the unsigned plaintext message envelope. Deniable: without a
//     signature it proves nothing on its own.
//   - Seal: a kind-13 envelope signed by the real sender whose content is
//     the encrypted rumor. Authenticity lives here.
//   - Gift wrap: a kind-1059 envelope signed by a single-use ephemeral key
//     whose content is the encrypted seal, addressed to one recipient via a
//     "p" tag. Transport-layer sender anonymity lives here: relay operators
//     see only throwaway authors.
//
// Compose produces two wraps of the identical rumor, one addressed to the
// receiver and one to the sender. Publishing the second copy to the
// sender's own inbox relays is what lets a sender recover sent messages
// from their own relay history later.
package giftwrap
