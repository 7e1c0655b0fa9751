package transcribe

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ProbeDuration estimates the duration in seconds of a local audio file
// without decoding it. WAV files are read from the fmt chunk; MP3 files are
// estimated from file size and bitrate. Other formats return 0, in which
// case the transcription endpoint's reported duration is used instead.
func ProbeDuration(path string) (float64, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		return probeWAV(path)
	case ".mp3":
		return probeMP3(path)
	default:
		return 0, nil
	}
}

// probeWAV reads the RIFF header and walks chunks to the fmt chunk, then
// computes duration as data size over byte rate.
func probeWAV(path string) (float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open wav: %w", err)
	}
	defer f.Close()

	header := make([]byte, 12)
	if _, err := io.ReadFull(f, header); err != nil {
		return 0, fmt.Errorf("read wav header: %w", err)
	}
	if string(header[0:4]) != "RIFF" || string(header[8:12]) != "WAVE" {
		return 0, fmt.Errorf("not a RIFF/WAVE file")
	}

	var byteRate uint32
	var dataSize uint32

	chunk := make([]byte, 8)
	for {
		if _, err := io.ReadFull(f, chunk); err != nil {
			break
		}
		id := string(chunk[0:4])
		size := binary.LittleEndian.Uint32(chunk[4:8])

		switch id {
		case "fmt ":
			fmtChunk := make([]byte, size)
			if _, err := io.ReadFull(f, fmtChunk); err != nil {
				return 0, fmt.Errorf("read fmt chunk: %w", err)
			}
			if len(fmtChunk) >= 12 {
				byteRate = binary.LittleEndian.Uint32(fmtChunk[8:12])
			}
		case "data":
			dataSize = size
		}

		if byteRate > 0 && dataSize > 0 {
			break
		}
		if id != "fmt " {
			// Chunks are word-aligned.
			skip := int64(size)
			if size%2 == 1 {
				skip++
			}
			if _, err := f.Seek(skip, io.SeekCurrent); err != nil {
				break
			}
		}
	}

	if byteRate == 0 || dataSize == 0 {
		return 0, fmt.Errorf("wav fmt or data chunk missing")
	}

	return float64(dataSize) / float64(byteRate), nil
}

// mp3Bitrates maps the MPEG1 Layer III bitrate index to kbps.
var mp3Bitrates = [16]int{0, 32, 40, 48, 56, 64, 80, 96, 112, 128, 160, 192, 224, 256, 320, 0}

// probeMP3 finds the first frame header and estimates duration from file
// size and that frame's bitrate. VBR files get a rough estimate, which is
// good enough for speaking-speed analytics.
func probeMP3(path string) (float64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, fmt.Errorf("stat mp3: %w", err)
	}

	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open mp3: %w", err)
	}
	defer f.Close()

	// Frame sync lives within the first chunk unless a huge ID3 tag leads.
	buf := make([]byte, 64*1024)
	n, err := f.Read(buf)
	if err != nil {
		return 0, fmt.Errorf("read mp3: %w", err)
	}
	buf = buf[:n]

	start := 0
	if len(buf) >= 10 && string(buf[0:3]) == "ID3" {
		// Syncsafe tag size in bytes 6-9.
		tagSize := int(buf[6]&0x7f)<<21 | int(buf[7]&0x7f)<<14 | int(buf[8]&0x7f)<<7 | int(buf[9]&0x7f)
		start = 10 + tagSize
		if start >= len(buf) {
			if _, err := f.Seek(int64(start), io.SeekStart); err != nil {
				return 0, fmt.Errorf("seek past ID3 tag: %w", err)
			}
			buf = make([]byte, 8*1024)
			n, err := f.Read(buf)
			if err != nil {
				return 0, fmt.Errorf("read mp3 frames: %w", err)
			}
			buf = buf[:n]
			start = 0
		}
	}

	for i := start; i+3 < len(buf); i++ {
		if buf[i] != 0xff || buf[i+1]&0xe0 != 0xe0 {
			continue
		}
		bitrateIndex := buf[i+2] >> 4
		kbps := mp3Bitrates[bitrateIndex]
		if kbps == 0 {
			continue
		}
		return float64(info.Size()) * 8 / float64(kbps*1000), nil
	}

	return 0, fmt.Errorf("no mp3 frame header found")
}
