// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package bootproto

import (
	"errors"
	"fmt"
)

// MaxImageSize is the largest image a 32-bit page address can reach
const MaxImageSize uint64 = 1 << 32

// ErrImageTooLarge is returned for images whose pages would not fit the
// 32-bit address space
var ErrImageTooLarge = errors.New("firmware image exceeds the 32-bit address space")

// Page is a window of a firmware image that is programmed with one
// WRITE_PAGE command. Data is never padded; padding is applied by
// WritePageFrame.
type Page struct {
	Index   int
	Address uint32
	Data    []byte
}

// PageCount returns the number of pages needed to hold an image of size bytes.
func PageCount(size int) int {
	if size <= 0 {
		return 0
	}
	return (size + PageSize - 1) / PageSize
}

// CheckImageSize rejects image sizes whose padded pages pass MaxImageSize.
func CheckImageSize(size int) error {
	if size <= 0 {
		return nil
	}
	padded := uint64(PageCount(size)) * PageSize
	if padded > MaxImageSize {
		return fmt.Errorf("%w: %d bytes", ErrImageTooLarge, size)
	}
	return nil
}

// PageAt returns page index of image.
func PageAt(image []byte, index int) (Page, error) {
	if index < 0 || index >= PageCount(len(image)) {
		return Page{}, fmt.Errorf("page index %d out of range (image has %d pages)", index, PageCount(len(image)))
	}

	start := index * PageSize
	if uint64(start) >= MaxImageSize {
		return Page{}, fmt.Errorf("%w: page %d", ErrImageTooLarge, index)
	}
	end := min(start+PageSize, len(image))

	return Page{
		Index:   index,
		Address: uint32(start),
		Data:    image[start:end],
	}, nil
}

// Frame builds the WRITE_PAGE frame for the page.
func (p Page) Frame() ([]byte, error) {
	return WritePageFrame(p.Address, p.Data)
}
