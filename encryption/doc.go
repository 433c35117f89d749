// Package encryption seals values at rest with an AEAD cipher.
//
// Run records stored in Redis can hold whatever a plan produced, so the
// store can seal them before writing. Keys are passphrases hashed to 256
// bits; every Seal draws a fresh random nonce. Associated data binds a
// sealed value to its location, so a value copied under another key fails
// to open.
//
//	c, err := encryption.New(encryption.Config{Enabled: true, Key: secret})
//	store := redis.NewStore[server.RunRecord](client, "runs", ttl, redis.WithCipher(c))
package encryption
