package udf

import (
	"github.com/bgrewell/disc-kit/pkg/consts"
	"github.com/bgrewell/disc-kit/pkg/sector"
	"github.com/bgrewell/disc-kit/pkg/source"
	"github.com/bgrewell/disc-kit/pkg/stream"
)

// blockDevice reads 2048 byte logical blocks from whatever the volume sits on.
type blockDevice interface {
	readBlocks(buf []byte, lsn uint32, count uint32) error
	Close() error
}

type streamDevice struct {
	s     stream.Stream
	owned bool
}

func (d *streamDevice) readBlocks(buf []byte, lsn uint32, count uint32) error {
	n := int(count) * consts.UDF_BLOCKSIZE
	return stream.ReadFull(d.s, buf[:n], int64(lsn)*consts.UDF_BLOCKSIZE)
}

func (d *streamDevice) Close() error {
	if !d.owned {
		return nil
	}
	return d.s.Close()
}

type discDevice struct {
	d     *source.Disc
	owned bool
}

func (d *discDevice) readBlocks(buf []byte, lsn uint32, count uint32) error {
	return d.d.ReadDataSectors(buf, sector.LSN(lsn), consts.UDF_BLOCKSIZE, uint(count))
}

func (d *discDevice) Close() error {
	if !d.owned {
		return nil
	}
	return d.d.Close()
}
