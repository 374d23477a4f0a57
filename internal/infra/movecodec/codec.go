// Package movecodec parses and serializes the compact wire formats used for
// move logs and heartbeat logs.
package movecodec

import (
	"strconv"
	"strings"

	"github.com/snakeguard/snakeguard/internal/domain"
)

// Size limits.
const (
	MaxMovesBytes = 50_000
	MaxHeartbeatsBytes = 10_000
)

// ErrPayloadTooLarge is returned by Decode* when the wire payload exceeds
// its configured byte cap.
type ErrPayloadTooLarge struct {
	Kind string
	Bytes int
	Limit int
}

func (e *ErrPayloadTooLarge) Error() string {
	return e.Kind + " payload of " + strconv.Itoa(e.Bytes) + " bytes exceeds limit of " + strconv.Itoa(e.Limit)
}

// DecodeMoves parses the semicolon-delimited move log. Moves serialize as
// "d,f,t" triples; a legacy two-field "d,t" form is accepted with f=0.
// Entries that fail to parse as numbers are dropped silently.
func DecodeMoves(s string) ([]domain.Move, error) {
	if len(s) > MaxMovesBytes {
		return nil, &ErrPayloadTooLarge{Kind: "moves", Bytes: len(s), Limit: MaxMovesBytes}
	}
	if s == "" {
		return nil, nil
	}

	entries := strings.Split(s, ";")
	moves := make([]domain.Move, 0, len(entries))
	for _, e := range entries {
		if e == "" {
			continue
		}
		fields := strings.Split(e, ",")

		var dir, frame, t int64
		var err error
		switch len(fields) {
		case 2:
			// Legacy "d,t" form — frame defaults to 0.
			dir, err = strconv.ParseInt(fields[0], 10, 64)
			if err != nil {
				continue
			}
			t, err = strconv.ParseInt(fields[1], 10, 64)
			if err != nil {
				continue
			}
		case 3:
			dir, err = strconv.ParseInt(fields[0], 10, 64)
			if err != nil {
				continue
			}
			frame, err = strconv.ParseInt(fields[1], 10, 64)
			if err != nil {
				continue
			}
			t, err = strconv.ParseInt(fields[2], 10, 64)
			if err != nil {
				continue
			}
		default:
			continue
		}

		moves = append(moves, domain.Move{
			Direction: domain.Direction(dir),
			Frame: uint64(frame),
			TimeMs: t,
		})
	}
	return moves, nil
}

// EncodeMoves serializes moves into their canonical "d,f,t" wire form.
func EncodeMoves(moves []domain.Move) string {
	parts := make([]string, len(moves))
	for i, m := range moves {
		parts[i] = strconv.Itoa(int(m.Direction)) + "," +
		strconv.FormatUint(m.Frame, 10) + "," +
		strconv.FormatInt(m.TimeMs, 10)
	}
	return strings.Join(parts, ";")
}

// DecodeHeartbeats parses the semicolon-delimited heartbeat log. Heartbeats
// serialize as "t,p,f,s[,score]" tuples.
func DecodeHeartbeats(s string) ([]domain.Heartbeat, error) {
	if len(s) > MaxHeartbeatsBytes {
		return nil, &ErrPayloadTooLarge{Kind: "heartbeats", Bytes: len(s), Limit: MaxHeartbeatsBytes}
	}
	if s == "" {
		return nil, nil
	}

	entries := strings.Split(s, ";")
	heartbeats := make([]domain.Heartbeat, 0, len(entries))
	for _, e := range entries {
		if e == "" {
			continue
		}
		fields := strings.Split(e, ",")
		if len(fields) != 4 && len(fields) != 5 {
			continue
		}

		t, err := strconv.ParseInt(fields[0], 10, 64)
		if err != nil {
			continue
		}
		p, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			continue
		}
		frame, err := strconv.ParseInt(fields[2], 10, 64)
		if err != nil {
			continue
		}
		speed, err := strconv.ParseInt(fields[3], 10, 64)
		if err != nil {
			continue
		}

		hb := domain.Heartbeat{
			TimeMs: t,
			PerfMs: p,
			Frame: uint64(frame),
			SpeedMs: speed,
		}
		if len(fields) == 5 {
			score, err := strconv.ParseInt(fields[4], 10, 64)
			if err == nil {
				hb.Score = int(score)
				hb.HasScore = true
			}
		}
		heartbeats = append(heartbeats, hb)
	}
	return heartbeats, nil
}

// EncodeHeartbeats serializes heartbeats into their canonical wire form.
func EncodeHeartbeats(heartbeats []domain.Heartbeat) string {
	parts := make([]string, len(heartbeats))
	for i, h := range heartbeats {
		part := strconv.FormatInt(h.TimeMs, 10) + "," +
		strconv.FormatInt(h.PerfMs, 10) + "," +
		strconv.FormatUint(h.Frame, 10) + "," +
		strconv.FormatInt(h.SpeedMs, 10)
		if h.HasScore {
			part += "," + strconv.Itoa(h.Score)
		}
		parts[i] = part
	}
	return strings.Join(parts, ";")
}
