package ui

// iconBytes is a 22x22 PNG: a white frame around a play mark.
var iconBytes = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x00, 0x00, 0x0d,
	0x49, 0x48, 0x44, 0x52, 0x00, 0x00, 0x00, 0x16, 0x00, 0x00, 0x00, 0x16,
	0x08, 0x06, 0x00, 0x00, 0x00, 0xc4, 0xb4, 0x6c, 0x3b, 0x00, 0x00, 0x00,
	0x35, 0x49, 0x44, 0x41, 0x54, 0x78, 0xda, 0x63, 0x60, 0x18, 0x05, 0x74,
	0x03, 0xff, 0xa9, 0x04, 0xe8, 0x6f, 0x30, 0xa5, 0x3e, 0x1e, 0x78, 0x83,
	0x89, 0xb5, 0x90, 0x6c, 0x83, 0x09, 0x59, 0x40, 0xb1, 0xc1, 0x24, 0xfb,
	0x6c, 0xc0, 0x0d, 0x1e, 0xfc, 0x91, 0x37, 0xf8, 0xd3, 0xf1, 0xd0, 0x29,
	0x2b, 0x46, 0x01, 0xcd, 0x00, 0x00, 0xbf, 0xbd, 0x1d, 0xff, 0x03, 0x82,
	0x12, 0x97, 0x00, 0x00, 0x00, 0x00, 0x49, 0x45, 0x4e, 0x44, 0xae, 0x42,
	0x60, 0x82,
}
