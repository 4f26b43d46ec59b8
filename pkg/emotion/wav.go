package emotion

import (
	"encoding/binary"
	"fmt"
	"time"
)

// wavInfo describes the PCM stream inside a RIFF/WAVE container.
type wavInfo struct {
	audioFormat   uint16
	channels      uint16
	sampleRate    uint32
	byteRate      uint32
	blockAlign    uint16
	bitsPerSample uint16

	dataOffset int
	dataSize   int
}

func parseWAV(data []byte) (*wavInfo, error) {
	if len(data) < 12 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return nil, ErrNotWAV
	}

	info := &wavInfo{}
	haveFmt := false
	haveData := false

	pos := 12
	for pos+8 <= len(data) {
		id := string(data[pos : pos+4])
		size := int(binary.LittleEndian.Uint32(data[pos+4 : pos+8]))
		body := pos + 8
		if body+size > len(data) {
			// Tolerate a truncated final chunk.
			size = len(data) - body
		}

		switch id {
		case "fmt ":
			if size < 16 {
				return nil, fmt.Errorf("%w: short fmt chunk", ErrNotWAV)
			}
			info.audioFormat = binary.LittleEndian.Uint16(data[body:])
			info.channels = binary.LittleEndian.Uint16(data[body+2:])
			info.sampleRate = binary.LittleEndian.Uint32(data[body+4:])
			info.byteRate = binary.LittleEndian.Uint32(data[body+8:])
			info.blockAlign = binary.LittleEndian.Uint16(data[body+12:])
			info.bitsPerSample = binary.LittleEndian.Uint16(data[body+14:])
			haveFmt = true
		case "data":
			info.dataOffset = body
			info.dataSize = size
			haveData = true
		}

		pos = body + size
		if size%2 == 1 {
			// RIFF chunks are word-aligned.
			pos++
		}
	}

	if !haveFmt || !haveData {
		return nil, fmt.Errorf("%w: missing fmt or data chunk", ErrNotWAV)
	}
	if info.blockAlign == 0 {
		info.blockAlign = info.channels * info.bitsPerSample / 8
	}
	if info.blockAlign == 0 || info.sampleRate == 0 {
		return nil, fmt.Errorf("%w: invalid fmt chunk", ErrNotWAV)
	}

	return info, nil
}

// SplitWAV splits a WAV stream into standalone WAV chunks of at most
// chunkDur each. The chunk count rounds up: the final chunk keeps the
// remainder, and no frames are dropped or duplicated.
func SplitWAV(data []byte, chunkDur time.Duration) ([][]byte, error) {
	info, err := parseWAV(data)
	if err != nil {
		return nil, err
	}
	if chunkDur <= 0 {
		chunkDur = DefaultChunkDuration
	}

	frameSize := int(info.blockAlign)
	pcm := data[info.dataOffset : info.dataOffset+info.dataSize]
	totalFrames := len(pcm) / frameSize
	if totalFrames == 0 {
		return nil, ErrNoAudioData
	}
	// Drop any trailing partial frame.
	pcm = pcm[:totalFrames*frameSize]

	framesPerChunk := int(int64(info.sampleRate) * int64(chunkDur) / int64(time.Second))
	if framesPerChunk <= 0 {
		framesPerChunk = 1
	}

	count := (totalFrames + framesPerChunk - 1) / framesPerChunk
	chunks := make([][]byte, 0, count)
	for i := 0; i < count; i++ {
		start := i * framesPerChunk * frameSize
		end := start + framesPerChunk*frameSize
		if end > len(pcm) {
			end = len(pcm)
		}
		chunks = append(chunks, encodeWAV(info, pcm[start:end]))
	}

	return chunks, nil
}

// encodeWAV wraps PCM frames in a canonical 44-byte RIFF header.
func encodeWAV(info *wavInfo, pcm []byte) []byte {
	buf := make([]byte, 44+len(pcm))
	copy(buf[0:4], "RIFF")
	binary.LittleEndian.PutUint32(buf[4:8], uint32(36+len(pcm)))
	copy(buf[8:12], "WAVE")
	copy(buf[12:16], "fmt ")
	binary.LittleEndian.PutUint32(buf[16:20], 16)
	binary.LittleEndian.PutUint16(buf[20:22], info.audioFormat)
	binary.LittleEndian.PutUint16(buf[22:24], info.channels)
	binary.LittleEndian.PutUint32(buf[24:28], info.sampleRate)
	binary.LittleEndian.PutUint32(buf[28:32], info.byteRate)
	binary.LittleEndian.PutUint16(buf[32:34], info.blockAlign)
	binary.LittleEndian.PutUint16(buf[34:36], info.bitsPerSample)
	copy(buf[36:40], "data")
	binary.LittleEndian.PutUint32(buf[40:44], uint32(len(pcm)))
	copy(buf[44:], pcm)
	return buf
}
