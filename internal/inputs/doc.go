// Package inputs loads the signing keys and destination addresses the
// dispatcher works with. Key lists may be stored age-encrypted; decrypted
// key material is kept in locked memory and zeroed once the accounts are
// built.
package inputs
