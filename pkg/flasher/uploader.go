// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package flasher drives the Makcu bootloader upload sequence over a Channel.
//
// An upload runs ENTER_BOOTLOADER, ERASE, one WRITE_PAGE per 128-byte page,
// VERIFY and EXIT_BOOTLOADER in that order. Every step waits for a single ACK
// byte with its own timeout, and the first failure aborts the whole upload.
// Nothing is retried and nothing is rolled back: a failed upload leaves the
// device flash partially erased or written until a full upload succeeds.
package flasher

import (
	"fmt"
	"time"

	"github.com/Thermoquad/makcuflash/pkg/bootproto"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
)

// Uploader sequences one firmware upload at a time over a Channel.
// It is not safe for concurrent use.
type Uploader struct {
	ch       Channel
	logger   zerolog.Logger
	clock    clockwork.Clock
	progress ProgressFunc

	state        State
	stats        Statistics
	image        []byte
	pagesWritten int
	bytesWritten int
}

// New creates an Uploader bound to ch.
func New(ch Channel, opts ...Option) *Uploader {
	if ch == nil {
		panic("flasher: channel cannot be nil")
	}

	u := &Uploader{ch: ch, state: StateIdle}
	defaultOptions(u)
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// State returns the current upload state
func (u *Uploader) State() State {
	return u.state
}

// Statistics returns traffic counters for the last upload
func (u *Uploader) Statistics() Statistics {
	return u.stats
}

// Upload programs image into the device and returns nil once the bootloader
// has been told to exit. Any failed step returns a *StepError.
//
// An empty or oversize image, or a closed channel, fails before a single
// byte is written.
func (u *Uploader) Upload(image []byte) error {
	u.reset(image)

	if len(image) == 0 {
		return u.fail(-1, ErrEmptyImage)
	}
	if err := bootproto.CheckImageSize(len(image)); err != nil {
		return u.fail(-1, err)
	}
	if !u.ch.IsOpen() {
		return u.fail(-1, ErrChannelClosed)
	}

	u.stats.TotalPages = bootproto.PageCount(len(image))
	u.logger.Info().
		Int("bytes", len(image)).
		Int("pages", u.stats.TotalPages).
		Msg("starting firmware upload")

	if err := u.enterBootloader(); err != nil {
		return u.fail(-1, err)
	}

	if err := u.erase(); err != nil {
		return u.fail(-1, err)
	}

	u.transition(StateWritingPages)
	for i := 0; i < u.stats.TotalPages; i++ {
		if err := u.writePage(i); err != nil {
			return u.fail(i, err)
		}
	}

	if err := u.verify(); err != nil {
		return u.fail(-1, err)
	}

	u.exitBootloader()

	u.transition(StateDone)
	u.logger.Info().
		Int("pages", u.stats.PagesWritten).
		Dur("elapsed", u.stats.Elapsed).
		Msg("firmware upload complete")

	return nil
}

func (u *Uploader) reset(image []byte) {
	u.state = StateIdle
	u.image = image
	u.pagesWritten = 0
	u.bytesWritten = 0
	u.stats = newStatistics(u.clock.Now())
}

// enterBootloader sends ENTER_BOOTLOADER and waits for the device to settle
// before listening for its ACK.
func (u *Uploader) enterBootloader() error {
	u.transition(StateEnteringBootloader)

	if err := u.send(bootproto.CommandFrame(bootproto.CmdEnterBootloader)); err != nil {
		return fmt.Errorf("send enter bootloader: %w", err)
	}

	u.clock.Sleep(bootproto.SettleDelay)

	if err := u.awaitAck(bootproto.EnterTimeout); err != nil {
		return fmt.Errorf("bootloader entry not acknowledged: %w", err)
	}

	u.logger.Debug().Msg("entered bootloader mode")
	return nil
}

func (u *Uploader) erase() error {
	u.transition(StateErasing)

	if err := u.send(bootproto.CommandFrame(bootproto.CmdErase)); err != nil {
		return fmt.Errorf("send erase: %w", err)
	}

	if err := u.awaitAck(bootproto.EraseTimeout); err != nil {
		return fmt.Errorf("flash erase failed: %w", err)
	}

	u.logger.Debug().Msg("flash erased")
	return nil
}

// writePage programs one page and waits for its ACK. Pages must be written
// in ascending order; the device programs one flash block at a time.
func (u *Uploader) writePage(index int) error {
	page, err := bootproto.PageAt(u.image, index)
	if err != nil {
		return err
	}

	frame, err := page.Frame()
	if err != nil {
		return err
	}

	if err := u.send(frame); err != nil {
		return fmt.Errorf("send page at 0x%08X: %w", page.Address, err)
	}

	if err := u.awaitAck(bootproto.WritePageTimeout); err != nil {
		return fmt.Errorf("page at 0x%08X not acknowledged: %w", page.Address, err)
	}

	u.pagesWritten++
	u.bytesWritten += len(page.Data)
	u.stats.PagesWritten = u.pagesWritten

	u.logger.Trace().
		Int("page", index).
		Str("address", fmt.Sprintf("0x%08X", page.Address)).
		Int("length", len(page.Data)).
		Msg("page written")

	u.report()
	return nil
}

// verify sends VERIFY followed by the image checksum as a separate write.
func (u *Uploader) verify() error {
	u.transition(StateVerifying)

	sum := bootproto.Checksum(u.image)
	u.logger.Debug().Str("checksum", fmt.Sprintf("0x%08X", sum)).Msg("verifying firmware")

	if err := u.send(bootproto.CommandFrame(bootproto.CmdVerify)); err != nil {
		return fmt.Errorf("send verify: %w", err)
	}

	if err := u.send(bootproto.ChecksumFrame(sum)); err != nil {
		return fmt.Errorf("send checksum: %w", err)
	}

	if err := u.awaitAck(bootproto.VerifyTimeout); err != nil {
		return fmt.Errorf("firmware verification failed: %w", err)
	}

	u.logger.Debug().Msg("firmware verified")
	return nil
}

// exitBootloader sends EXIT_BOOTLOADER without waiting for an ACK. The
// device resets as soon as it sees the command and cannot answer reliably,
// so this step trusts the reset and never fails the upload. The delay lets
// the reset begin before the caller closes the channel.
func (u *Uploader) exitBootloader() {
	u.transition(StateExitingBootloader)

	if err := u.send(bootproto.CommandFrame(bootproto.CmdExitBootloader)); err != nil {
		u.logger.Warn().Err(err).Msg("exit bootloader command not sent, device may need a manual reset")
	}

	u.clock.Sleep(bootproto.SettleDelay)
	u.logger.Debug().Msg("bootloader exited")
}

// send writes one frame. A short write is a failure; it is never resumed.
func (u *Uploader) send(frame []byte) error {
	n, err := u.ch.Write(frame)
	u.stats.recordWrite(n)
	if err != nil {
		return err
	}
	if n != len(frame) {
		return fmt.Errorf("%w: %d of %d bytes", ErrShortWrite, n, len(frame))
	}
	return nil
}

func (u *Uploader) awaitAck(timeout time.Duration) error {
	result, err := AwaitAck(u.ch, timeout)
	u.stats.recordResult(result)
	return err
}

func (u *Uploader) transition(s State) {
	u.state = s
	u.stats.Elapsed = u.clock.Since(u.stats.StartTime)
	u.logger.Debug().Stringer("state", s).Msg("upload state changed")
	u.report()
}

// fail moves the upload to StateFailed and wraps err with the failing step.
func (u *Uploader) fail(page int, err error) error {
	stepErr := &StepError{State: u.state, Page: page, Err: err}

	event := u.logger.Error().Err(err).Stringer("state", u.state)
	if page >= 0 {
		event = event.Int("page", page)
	}
	if IsProtocolError(err) {
		event.Msg("device rejected command")
	} else {
		event.Msg("upload step failed")
	}

	u.transition(StateFailed)
	return stepErr
}

func (u *Uploader) report() {
	u.stats.Elapsed = u.clock.Since(u.stats.StartTime)
	if u.progress == nil {
		return
	}
	u.progress(Progress{
		State:        u.state,
		Page:         u.pagesWritten,
		TotalPages:   u.stats.TotalPages,
		BytesWritten: u.bytesWritten,
		TotalBytes:   len(u.image),
		Elapsed:      u.stats.Elapsed,
	})
}
