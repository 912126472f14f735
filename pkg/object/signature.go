package object

// CommitSigningPayload returns the canonical bytes that are signed for a
// commit. The payload excludes the signature field.
func CommitSigningPayload(c *CommitObj) []byte {
	if c == nil {
		return nil
	}
	copyCommit := *c
	copyCommit.Signature = ""
	return MarshalCommit(&copyCommit)
}

// CommitIdentityPayload returns the bytes a commit digest is computed
// over. It is the signing payload, so a signature never changes identity.
func CommitIdentityPayload(c *CommitObj) []byte {
	return CommitSigningPayload(c)
}
