package sstable

/*
sstable file layout

	+---------------+----------------+---------------+---------+
	|  data block 0 | ...            |  index block  | footer  |
	+---------------+----------------+---------------+---------+

Every block (data or index) is followed by a one-byte compression type and
four trailing bytes this reader never inspects:

	+------------------------------+------------------+----------+
	|            payload           | compression type |  unused  |
	+------------------------------+------------------+----------+

A data block payload is a sequence of prefix-compressed entries followed by
a trailing restart array:

	+-----------------+-----+-----------------+---------+---------+---------+
	|  block entry 0  | ... |  block entry n  |   rs0   |   rsN   | rs len  |
	+-----------------+-----+-----------------+---------+---------+---------+

	block entry: varint shared | varint non_shared | varint value_len |
	             key_suffix[non_shared] | value[value_len]

The index block has the same shape; its values are serialized block
handles pointing at data blocks, and its keys carry no internal-key tag.

The footer is the last 48 bytes of the file: two varint-encoded block
handles (metaindex, then index), padded to 40 bytes, followed by an
8-byte magic this reader does not verify.
*/

const footerLength = 48

type blockHandle struct {
	offset uint64
	size   uint64
}
