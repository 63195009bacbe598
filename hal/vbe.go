package hal

import "encoding/binary"

// VBEModeInfoSize is the size of the block filled by VBE function 0x4F01.
const VBEModeInfoSize = 256

// Mode attribute bits.
const (
	VBEAttrSupported = 1 << 0
	VBEAttrColor     = 1 << 3
	VBEAttrGraphics  = 1 << 4
	VBEAttrLinear    = 1 << 7
)

// Memory models.
const (
	VBEMemoryPackedPixel = 0x04
	VBEMemoryDirectColor = 0x06
)

// VBEModeInfo is the subset of the VBE 2.0 mode info block the display
// code consumes.
type VBEModeInfo struct {
	Attributes       uint16
	BytesPerScanLine uint16
	Width            uint16
	Height           uint16
	BitsPerPixel     uint8
	MemoryModel      uint8
	PhysBase         uint32
}

// Offsets within the mode info block.
const (
	vbeOffAttributes   = 0
	vbeOffBytesPerLine = 16
	vbeOffXRes         = 18
	vbeOffYRes         = 20
	vbeOffBPP          = 25
	vbeOffMemoryModel  = 27
	vbeOffPhysBase     = 40
)

// EncodeVBEModeInfo writes m into a mode info block.
//
// Layout (little-endian), per VBE 2.0:
//   - u16 @0:  mode attributes
//   - u16 @16: bytes per scan line
//   - u16 @18: x resolution
//   - u16 @20: y resolution
//   - u8  @25: bits per pixel
//   - u8  @27: memory model
//   - u32 @40: physical base of the linear framebuffer
func EncodeVBEModeInfo(dst []byte, m VBEModeInfo) bool {
	if len(dst) < VBEModeInfoSize {
		return false
	}
	clear(dst[:VBEModeInfoSize])
	binary.LittleEndian.PutUint16(dst[vbeOffAttributes:], m.Attributes)
	binary.LittleEndian.PutUint16(dst[vbeOffBytesPerLine:], m.BytesPerScanLine)
	binary.LittleEndian.PutUint16(dst[vbeOffXRes:], m.Width)
	binary.LittleEndian.PutUint16(dst[vbeOffYRes:], m.Height)
	dst[vbeOffBPP] = m.BitsPerPixel
	dst[vbeOffMemoryModel] = m.MemoryModel
	binary.LittleEndian.PutUint32(dst[vbeOffPhysBase:], m.PhysBase)
	return true
}

// DecodeVBEModeInfo decodes a mode info block.
func DecodeVBEModeInfo(src []byte) (m VBEModeInfo, ok bool) {
	if len(src) < VBEModeInfoSize {
		return VBEModeInfo{}, false
	}
	m.Attributes = binary.LittleEndian.Uint16(src[vbeOffAttributes:])
	m.BytesPerScanLine = binary.LittleEndian.Uint16(src[vbeOffBytesPerLine:])
	m.Width = binary.LittleEndian.Uint16(src[vbeOffXRes:])
	m.Height = binary.LittleEndian.Uint16(src[vbeOffYRes:])
	m.BitsPerPixel = src[vbeOffBPP]
	m.MemoryModel = src[vbeOffMemoryModel]
	m.PhysBase = binary.LittleEndian.Uint32(src[vbeOffPhysBase:])
	return m, true
}
