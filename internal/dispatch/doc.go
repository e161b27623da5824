// Package dispatch is the transfer engine: it gates each account on its
// balance, sends randomized micro-transfers through the retry wrapper and
// classifies every attempt into a final outcome.
package dispatch
