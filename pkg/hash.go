package fileindex

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

// HexDigestLen is the length of the hex-encoded SHA-256 digest stored for
// every indexed file.
const HexDigestLen = sha256.Size * 2

// DefaultHashBuffer is the read buffer size used when no configuration is
// available (64KB, one block per read).
const DefaultHashBuffer = 64 * 1024

// HashFile calculates the SHA-256 hash of a file, reading it in fixed-size
// blocks so memory stays bounded for arbitrarily large files
func HashFile(filePath string, bufferSize int) ([]byte, error) {
	if bufferSize <= 0 {
		bufferSize = DefaultHashBuffer
	}

	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s: %w", filePath, err)
	}
	defer file.Close()

	hasher := sha256.New()
	buffer := make([]byte, bufferSize)

	for {
		n, err := file.Read(buffer)
		if n > 0 {
			hasher.Write(buffer[:n])
		}

		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read from file %s: %w", filePath, err)
		}
	}

	return hasher.Sum(nil), nil
}

// HashFileToHexString calculates the SHA-256 hash of a file and returns it as
// a hex string
func HashFileToHexString(filePath string, bufferSize int) (string, error) {
	hashBytes, err := HashFile(filePath, bufferSize)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(hashBytes), nil
}

// hashBufferSize returns the configured hash buffer size in bytes
func (idx *Index) hashBufferSize() int {
	if idx.config == nil {
		return DefaultHashBuffer
	}

	performanceConfig := idx.config.GetPerformanceConfig()
	size, err := ParseHumanSize(performanceConfig.HashBuffer)
	if err != nil {
		VerboseLog(1, "invalid hash_buffer %q, using default: %v", performanceConfig.HashBuffer, err)
		return DefaultHashBuffer
	}
	return size
}
