package trust

import (
	"crypto/md5"
	"crypto/sha256"
	"hash"
	"io"
	"os"
)

// Out-of-band artefact checks. These are not on the trust path of root
// verification.

const digestBufSize = 32768

func fileDigest(path string, hasher hash.Hash) (string, error) {
	in, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer in.Close()
	buf := make([]byte, digestBufSize)
	if _, err := io.CopyBuffer(hasher, in, buf); err != nil {
		return "", err
	}
	return EncodeHex(hasher.Sum(nil)), nil
}

// Sha256Sum returns the hex-encoded SHA-256 digest of the file at path.
func Sha256Sum(path string) (string, error) {
	return fileDigest(path, sha256.New())
}

// Md5Sum returns the hex-encoded MD5 digest of the file at path.
func Md5Sum(path string) (string, error) {
	return fileDigest(path, md5.New())
}

// Sha256 reports whether the file's SHA-256 digest equals validation.
func Sha256(path, validation string) bool {
	digest, err := Sha256Sum(path)
	if err != nil {
		log.Error(err, "failed to compute sha256 digest", "path", path)
		return false
	}
	return digest == validation
}

// Md5 reports whether the file's MD5 digest equals validation.
func Md5(path, validation string) bool {
	digest, err := Md5Sum(path)
	if err != nil {
		log.Error(err, "failed to compute md5 digest", "path", path)
		return false
	}
	return digest == validation
}

// FileSize reports whether the file's size equals validation.
func FileSize(path string, validation int64) bool {
	info, err := os.Stat(path)
	if err != nil {
		log.Error(err, "failed to stat file", "path", path)
		return false
	}
	return info.Size() == validation
}
