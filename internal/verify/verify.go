// Package verify implements the byte-delta verification predicate of spec
// §4.4: a compressed FLAC archive must decode to exactly the bytes of its
// source WAV.
package verify

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/diffusor/talkytime/internal/domainerr"
	"github.com/diffusor/talkytime/internal/toolrunner"
)

// minContractSize is the floor below which xdelta3 inlines literal data
// instead of a copy instruction, putting the file out of the verification
// predicate's contract (spec §4.4).
const minContractSize = 18

// countWriter tallies bytes written through it, letting Delta report the
// decoded FLAC's byte length without writing it to a second file.
type countWriter struct{ n int64 }

func (c *countWriter) Write(p []byte) (int, error) {
	c.n += int64(len(p))
	return len(p), nil
}

// Delta decodes flac to stdout and pipes it into a binary delta encoder
// whose source is wav, writing the encoded delta to xd (spec §4.4 step 1).
// It returns the decoded byte count so the caller can check invariant 3
// (flac's decode-size equals the source WAV's byte length) without a
// second decode pass.
func Delta(ctx context.Context, flac, wav, xd string) (int64, error) {
	decode := toolrunner.Command(ctx, "flac_decode_stdout", "", map[string]string{"input": flac})
	encode := toolrunner.Command(ctx, "xdelta_encode", "", map[string]string{"source": wav})

	decodeOut, err := decode.StdoutPipe()
	if err != nil {
		return 0, err
	}
	pipeR, pipeW := io.Pipe()
	encode.Stdin = pipeR
	counter := &countWriter{}

	out, err := os.Create(xd)
	if err != nil {
		return 0, err
	}
	defer out.Close()
	encode.Stdout = out

	var decodeErr, encodeErr strings.Builder
	decode.Stderr = &decodeErr
	encode.Stderr = &encodeErr

	if err := encode.Start(); err != nil {
		return 0, domainerr.ErrSubprocess(err, "starting delta encoder")
	}
	if err := decode.Start(); err != nil {
		return 0, domainerr.ErrSubprocess(err, "starting flac decoder")
	}

	copyErrCh := make(chan error, 1)
	go func() {
		_, cerr := io.Copy(io.MultiWriter(pipeW, counter), decodeOut)
		pipeW.CloseWithError(cerr)
		copyErrCh <- cerr
	}()

	decodeWaitErr := decode.Wait()
	<-copyErrCh
	// The decoder has been reaped above; pause 2 ms before waiting on the
	// downstream encoder (spec §5 "Cancellation").
	time.Sleep(2 * time.Millisecond)
	encodeWaitErr := encode.Wait()

	if decodeWaitErr != nil {
		return 0, domainerr.ErrSubprocess(decodeWaitErr, "flac decode of %s: %s", flac, decodeErr.String())
	}
	if encodeWaitErr != nil {
		return 0, domainerr.ErrSubprocess(encodeWaitErr, "delta encode against %s: %s", wav, encodeErr.String())
	}
	return counter.n, nil
}

var (
	copyWindowLenRe    = regexp.MustCompile(`(?i)copy window length\s*=?\s*(\d+)`)
	copyWindowOffRe    = regexp.MustCompile(`(?i)copy window offset\s*=?\s*(\d+)`)
	targetWindowLenRe  = regexp.MustCompile(`(?i)target window length\s*=?\s*(\d+)`)
	dataSectionLenRe   = regexp.MustCompile(`(?i)data section length\s*=?\s*(\d+)`)
	cpy0Re             = regexp.MustCompile(`^\S+\s+\d+\s+CPY_0\s+(\d+)\s+@0\s*$`)
)

// Verify reads xd's printdelta dump and requires the predicate of spec
// §4.4: the copy window spans the whole source and target, there is no
// literal data, and exactly one CPY_0 instruction reconstructs the target.
// sourceSize and targetSize (the decode size of flac) are both required,
// independently, to defeat the false positive of a short target presenting
// as a "matching" copy of just its own length.
func Verify(ctx context.Context, xd string, sourceSize, targetSize int64) error {
	if sourceSize < minContractSize || targetSize < minContractSize {
		return domainerr.ErrXdeltaMismatch("file below %d bytes is out of verification contract (source=%d target=%d)",
			minContractSize, sourceSize, targetSize)
	}
	if sourceSize != targetSize {
		return domainerr.ErrXdeltaMismatch("source size %d != decoded target size %d", sourceSize, targetSize)
	}

	res, err := toolrunner.Must(ctx, "xdelta_printdelta", "", map[string]string{"input": xd})
	if err != nil {
		return err
	}
	if strings.TrimSpace(res.Stderr) != "" {
		return domainerr.ErrXdeltaMismatch("printdelta emitted stderr: %s", res.Stderr)
	}

	var (
		copyLen, copyOff, targetLen, dataLen int64
		haveCopyLen, haveCopyOff, haveTargetLen, haveDataLen bool
		cpy0Count int
		firstBadLine string
	)

	sc := bufio.NewScanner(strings.NewReader(res.Stdout))
	for sc.Scan() {
		line := sc.Text()
		switch {
		case copyWindowLenRe.MatchString(line):
			copyLen, _ = strconv.ParseInt(copyWindowLenRe.FindStringSubmatch(line)[1], 10, 64)
			haveCopyLen = true
		case copyWindowOffRe.MatchString(line):
			copyOff, _ = strconv.ParseInt(copyWindowOffRe.FindStringSubmatch(line)[1], 10, 64)
			haveCopyOff = true
		case targetWindowLenRe.MatchString(line):
			targetLen, _ = strconv.ParseInt(targetWindowLenRe.FindStringSubmatch(line)[1], 10, 64)
			haveTargetLen = true
		case dataSectionLenRe.MatchString(line):
			dataLen, _ = strconv.ParseInt(dataSectionLenRe.FindStringSubmatch(line)[1], 10, 64)
			haveDataLen = true
		case cpy0Re.MatchString(line):
			m := cpy0Re.FindStringSubmatch(line)
			size, _ := strconv.ParseInt(m[1], 10, 64)
			if size != sourceSize {
				return domainerr.ErrXdeltaMismatch("CPY_0 size %d != source size %d: %q", size, sourceSize, line)
			}
			cpy0Count++
		default:
			trimmed := strings.TrimSpace(line)
			if trimmed != "" && firstBadLine == "" && looksLikeInstruction(trimmed) {
				firstBadLine = trimmed
			}
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("verify: reading printdelta output: %w", err)
	}

	if firstBadLine != "" {
		return domainerr.ErrXdeltaMismatch("non-CPY_0 instruction present: %q", firstBadLine)
	}
	if !haveCopyLen || copyLen != sourceSize {
		return domainerr.ErrXdeltaMismatch("copy window length %d != source size %d", copyLen, sourceSize)
	}
	if !haveCopyOff || copyOff != 0 {
		return domainerr.ErrXdeltaMismatch("copy window offset %d != 0", copyOff)
	}
	if !haveTargetLen || targetLen != sourceSize {
		return domainerr.ErrXdeltaMismatch("target window length %d != source size %d", targetLen, sourceSize)
	}
	if !haveDataLen || dataLen != 0 {
		return domainerr.ErrXdeltaMismatch("data section length %d != 0", dataLen)
	}
	if cpy0Count != 1 {
		return domainerr.ErrXdeltaMismatch("expected exactly one CPY_0 instruction, found %d", cpy0Count)
	}
	return nil
}

func looksLikeInstruction(line string) bool {
	fields := strings.Fields(line)
	return len(fields) >= 3
}
