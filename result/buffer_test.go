// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package result

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ava-labs/contractcodec/trap"
	"github.com/ava-labs/contractcodec/utils/wrappers"
)

func payload(b ...byte) func(p *wrappers.Packer) {
	return func(p *wrappers.Packer) {
		p.PackFixedBytes(b)
	}
}

func TestEmpty(t *testing.T) {
	require.Equal(t, []byte{0, 0, 0, 0}, New().Finalize())
}

func TestSectionLayout(t *testing.T) {
	require := require.New(t)

	b := New()
	b.WriteSection(1, payload(0xaa))
	b.WriteSection(17, payload())
	b.WriteSection(18, func(p *wrappers.Packer) {
		p.PackInt(0x01020304)
		p.PackByte(0xff)
	})

	require.Equal([]byte{
		0x00, 0x00, 0x00, 0x15, // total
		0x01, 0x00, 0x00, 0x00, 0x01, 0xaa,
		0x11, 0x00, 0x00, 0x00, 0x00,
		0x12, 0x00, 0x00, 0x00, 0x05, 0x01, 0x02, 0x03, 0x04, 0xff,
	}, b.Finalize())
}

func TestSectionOrder(t *testing.T) {
	tests := []struct {
		name        string
		ids         []byte
		expectedErr error
	}{
		{
			name: "ascending",
			ids:  []byte{SectionEvents, SectionState, SectionReturnData},
		},
		{
			name: "gaps",
			ids:  []byte{0, 200, 255},
		},
		{
			name:        "descending",
			ids:         []byte{2, 1},
			expectedErr: ErrSectionOrder,
		},
		{
			name:        "repeated",
			ids:         []byte{1, 1},
			expectedErr: ErrSectionOrder,
		},
		{
			name:        "after last id",
			ids:         []byte{255, 255},
			expectedErr: errSectionAfterLast,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			require := require.New(t)

			err := trap.Run(func() {
				b := New()
				for _, id := range test.ids {
					b.WriteSection(id, payload(id))
				}
			})
			require.ErrorIs(err, test.expectedErr)
			if test.expectedErr != nil {
				require.ErrorIs(err, trap.ErrTrapped)
			}
		})
	}
}

func TestFinalizeTwice(t *testing.T) {
	require := require.New(t)

	b := New()
	b.WriteSection(SectionState, payload(1, 2))
	out := b.Finalize()
	require.Len(out, 4+1+4+2)

	err := trap.Run(func() {
		b.Finalize()
	})
	require.ErrorIs(err, ErrFinalized)

	err = trap.Run(func() {
		b.WriteSection(SectionReturnData, payload())
	})
	require.ErrorIs(err, ErrFinalized)
}

func TestWriterError(t *testing.T) {
	err := trap.Run(func() {
		New().WriteSection(SectionReturnData, func(p *wrappers.Packer) {
			p.Add(wrappers.ErrInsufficientLength)
		})
	})
	require.ErrorIs(t, err, wrappers.ErrInsufficientLength)
}
