// gpu.go - GP0/GP1 command processor, VRAM, and GPUSTAT/GPUREAD ports

/*
 ██▓ ███▄    █ ▄▄▄█████▓ █    ██  ██▓▄▄▄█████▓ ██▓ ▒█████   ███▄    █    ▓█████  ███▄    █   ▄████  ██▓ ███▄    █ ▓█████
▓██▒ ██ ▀█   █ ▓  ██▒ ▓▒ ██  ▓██▒▓██▒▓  ██▒ ▓▒▓██▒▒██▒  ██▒ ██ ▀█   █    ▓█   ▀  ██ ▀█   █  ██▒ ▀█▒▓██▒ ██ ▀█   █ ▓█   ▀
▒██▒▓██  ▀█ ██▒▒ ▓██░ ▒░▓██  ▒██░▒██▒▒ ▓██░ ▒░▒██▒▒██░  ██▒▓██  ▀█ ██▒   ▒███   ▓██  ▀█ ██▒▒██░▄▄▄░▒██▒▓██  ▀█ ██▒▒███
░██░▓██▒  ▐▌██▒░ ▓██▓ ░ ▓▓█  ░██░░██░░ ▓██▓ ░ ░██░▒██   ██░▓██▒  ▐▌██▒   ▒▓█  ▄ ▓██▒  ▐▌██▒░▓█  ██▓░██░▓██▒  ▐▌██▒▒▓█  ▄
░██░▒██░   ▓██░  ▒██▒ ░ ▒▒█████▓ ░██░  ▒██▒ ░ ░██░░ ████▓▒░▒██░   ▓██░   ░▒████▒▒██░   ▓██░░▒▓███▀▒░██░▒██░   ▓██░░▒████▒
░▓  ░ ▒░   ▒ ▒   ▒ ░░   ░▒▓▒ ▒ ▒ ░▓    ▒ ░░   ░▓  ░ ▒░▒░▒░ ░ ▒░   ▒ ▒    ░░ ▒░ ░░ ▒░   ▒ ▒  ░▒   ▒ ░▓  ░ ▒░   ▒ ▒ ░░ ▒░ ░
 ▒ ░░ ░░   ░ ▒░    ░    ░░▒░ ░ ░  ▒ ░    ░     ▒ ░  ░ ▒ ▒░ ░ ░░   ░ ▒░    ░ ░  ░░ ░░   ░ ▒░  ░   ░  ▒ ░░ ░░   ░ ▒░ ░ ░  ░
 ▒ ░   ░   ░ ░   ░       ░░░ ░ ░  ▒ ░  ░       ▒ ░░ ░ ░ ▒     ░   ░ ░       ░      ░   ░ ░ ░ ░   ░  ▒ ░   ░   ░ ░    ░
 ░           ░             ░      ░            ░      ░ ░           ░       ░  ░         ░       ░  ░           ░    ░  ░

Grounded on the teacher's CoprocessorManager register-window/command-table
pattern (coprocessor_manager.go): a command's (handler, word count) pair is
looked up once from a table keyed by opcode, words accumulate into a small
buffer, and the handler fires exactly once when the buffer is full (§9).
*/

package main

const (
	vramWidth  = 1024
	vramHeight = 512
)

type gp0Mode int

const (
	gp0ModeCommand gp0Mode = iota
	gp0ModeLoadImage
	gp0ModeStoreImage
)

// gp0CommandSpec is looked up once per command from the high byte of the
// first GP0 word: how many total words the command consumes, and the
// handler invoked once the buffer is full.
type gp0CommandSpec struct {
	words   int
	handler func(g *GPU, words []uint32)
}

var gp0CommandTable = map[byte]gp0CommandSpec{
	0x00: {1, gp0Nop},
	0x01: {1, gp0Nop},
	0x28: {5, gp0QuadMonoOpaque},
	0x2C: {9, gp0QuadTexturedOpaque},
	0x30: {6, gp0TriShadedOpaque},
	0x38: {8, gp0QuadShadedOpaque},
	0x68: {2, gp0DotMonoOpaque},
	0xA0: {3, gp0BeginLoadImage},
	0xC0: {3, gp0BeginStoreImage},
	0xE1: {1, gp0DrawMode},
	0xE2: {1, gp0TextureWindow},
	0xE3: {1, gp0DrawAreaTL},
	0xE4: {1, gp0DrawAreaBR},
	0xE5: {1, gp0DrawingOffset},
	0xE6: {1, gp0MaskBitSetting},
}

// vramWindow tracks an in-progress LoadImage/StoreImage rectangle scan.
type vramWindow struct {
	startX, startY int
	width, height  int
	curX, curY     int
}

// GPU holds GPUSTAT's decomposed fields, VRAM, and the GP0 command state
// machine described in §3/§4.5.
type GPU struct {
	// GPUSTAT fields
	dmaDirection   int
	irqFlag        bool
	displayDisable bool
	interlace      bool
	displayDepth24 bool
	videoModePAL   bool
	horizRes       uint8
	vertRes        uint8
	vertResBit     bool // deliberately not folded into status; see §9
	textureDisable bool
	field          bool
	setMaskWhileDrawing bool
	checkMaskBeforeDraw bool
	drawToDisplay       bool
	dither              bool
	texPageX            int
	texPageY            int
	semiTransparency    int
	texDepth            int
	texWinMaskX, texWinMaskY     int
	texWinOffsetX, texWinOffsetY int

	drawAreaTop, drawAreaLeft     int
	drawAreaBottom, drawAreaRight int
	drawOffsetX, drawOffsetY      int32

	dispStartX, dispStartY int
	dispRangeX1, dispRangeX2 int
	dispRangeY1, dispRangeY2 int

	vram [vramWidth * vramHeight]uint16

	mode        gp0Mode
	cmdBuf      [12]uint32
	cmdCount    int
	cmdTotal    int
	cmdHandler  func(g *GPU, words []uint32)

	window vramWindow

	gpuread uint32

	renderer Renderer
}

func NewGPU(renderer Renderer) *GPU {
	if renderer == nil {
		renderer = NewNullRenderer()
	}
	g := &GPU{renderer: renderer}
	g.gp1Reset()
	return g
}

// ---------------------------------------------------------------- GP0 port

// WriteGP0 feeds one word into the command FIFO. It implements the three
// mode state machine of §4.5.
func (g *GPU) WriteGP0(word uint32) {
	switch g.mode {
	case gp0ModeCommand:
		g.writeGP0Command(word)
	case gp0ModeLoadImage:
		g.writeGP0LoadImage(word)
	case gp0ModeStoreImage:
		// Writes are ignored while store-image is draining via GPUREAD.
	}
}

func (g *GPU) writeGP0Command(word uint32) {
	if g.cmdCount == 0 {
		opcode := byte(word >> 24)
		spec, ok := gp0CommandTable[opcode]
		if !ok {
			panic("gpu: unknown GP0 command opcode")
		}
		g.cmdBuf[0] = word
		g.cmdTotal = spec.words
		g.cmdHandler = spec.handler
		g.cmdCount = 1
		if g.cmdCount == g.cmdTotal {
			g.dispatchCommand()
		}
		return
	}

	g.cmdBuf[g.cmdCount] = word
	g.cmdCount++
	if g.cmdCount >= g.cmdTotal {
		g.dispatchCommand()
	}
}

func (g *GPU) dispatchCommand() {
	words := append([]uint32(nil), g.cmdBuf[:g.cmdCount]...)
	handler := g.cmdHandler
	g.cmdCount = 0
	g.cmdTotal = 0
	g.cmdHandler = nil
	handler(g, words)
}

func (g *GPU) writeGP0LoadImage(word uint32) {
	g.storePixel(uint16(word))
	g.storePixel(uint16(word >> 16))
	if g.window.curY >= g.window.startY+g.window.height {
		g.mode = gp0ModeCommand
	}
}

func (g *GPU) storePixel(px uint16) {
	if g.window.curY >= g.window.startY+g.window.height {
		return
	}
	addr := (g.window.curY%vramHeight)*vramWidth + (g.window.curX % vramWidth)
	g.vram[addr] = px
	g.window.curX++
	if g.window.curX >= g.window.startX+g.window.width {
		g.window.curX = g.window.startX
		g.window.curY++
	}
}

// ---------------------------------------------------------------- handlers

func gp0Nop(g *GPU, words []uint32) {}

func colorFromWord(w uint32) (r, g, b uint8) {
	return uint8(w), uint8(w >> 8), uint8(w >> 16)
}

func (g *GPU) vertexFromWord(colorWord, posWord uint32) Vertex {
	r, gg, b := colorFromWord(colorWord)
	x := int32(int16(posWord)) + g.drawOffsetX
	y := int32(int16(posWord>>16)) + g.drawOffsetY
	return Vertex{X: x, Y: y, R: r, G: gg, B: b}
}

func gp0QuadMonoOpaque(g *GPU, words []uint32) {
	color := words[0]
	var verts [4]Vertex
	for i := 0; i < 4; i++ {
		verts[i] = g.vertexFromWord(color, words[1+i])
	}
	g.renderer.DrawQuad(verts, false)
}

// gp0QuadTexturedOpaque ignores UV coordinates and draws the placeholder
// colour; the renderer collaborator that would sample a texture page is out
// of scope (§9, known fidelity gap).
func gp0QuadTexturedOpaque(g *GPU, words []uint32) {
	color := words[0]
	var verts [4]Vertex
	// words layout: color, (pos,uv) x4 -> positions at 1,3,5,7
	verts[0] = g.vertexFromWord(color, words[1])
	verts[1] = g.vertexFromWord(color, words[3])
	verts[2] = g.vertexFromWord(color, words[5])
	verts[3] = g.vertexFromWord(color, words[7])
	g.renderer.DrawQuad(verts, true)
}

func gp0TriShadedOpaque(g *GPU, words []uint32) {
	var verts [3]Vertex
	for i := 0; i < 3; i++ {
		verts[i] = g.vertexFromWord(words[2*i], words[2*i+1])
	}
	g.renderer.DrawTri(verts)
}

func gp0QuadShadedOpaque(g *GPU, words []uint32) {
	var verts [4]Vertex
	for i := 0; i < 4; i++ {
		verts[i] = g.vertexFromWord(words[2*i], words[2*i+1])
	}
	g.renderer.DrawQuad(verts, false)
}

func gp0DotMonoOpaque(g *GPU, words []uint32) {
	v := g.vertexFromWord(words[0], words[1])
	g.renderer.DrawDot(v)
}

func gp0BeginLoadImage(g *GPU, words []uint32) {
	destXY := words[1]
	whWH := words[2]
	g.window = vramWindow{
		startX: int(destXY & 0xFFFF),
		startY: int(destXY >> 16),
		width:  int(whWH & 0xFFFF),
		height: int(whWH >> 16),
	}
	g.window.curX = g.window.startX
	g.window.curY = g.window.startY
	if g.window.width == 0 || g.window.height == 0 {
		g.mode = gp0ModeCommand
		return
	}
	g.mode = gp0ModeLoadImage
}

func gp0BeginStoreImage(g *GPU, words []uint32) {
	destXY := words[1]
	whWH := words[2]
	g.window = vramWindow{
		startX: int(destXY & 0xFFFF),
		startY: int(destXY >> 16),
		width:  int(whWH & 0xFFFF),
		height: int(whWH >> 16),
	}
	g.window.curX = g.window.startX
	g.window.curY = g.window.startY
	if g.window.width == 0 || g.window.height == 0 {
		g.mode = gp0ModeCommand
		return
	}
	g.mode = gp0ModeStoreImage
}

func gp0DrawMode(g *GPU, words []uint32) {
	v := words[0]
	g.texPageX = int(v&0xF) * 64
	g.texPageY = int((v>>4)&1) * 256
	g.semiTransparency = int((v >> 5) & 3)
	g.texDepth = int((v >> 7) & 3)
	g.dither = (v>>9)&1 != 0
	g.drawToDisplay = (v>>10)&1 != 0
	g.textureDisable = (v>>11)&1 != 0
}

func gp0TextureWindow(g *GPU, words []uint32) {
	v := words[0]
	g.texWinMaskX = int(v & 0x1F)
	g.texWinMaskY = int((v >> 5) & 0x1F)
	g.texWinOffsetX = int((v >> 10) & 0x1F)
	g.texWinOffsetY = int((v >> 15) & 0x1F)
}

func gp0DrawAreaTL(g *GPU, words []uint32) {
	v := words[0]
	g.drawAreaLeft = int(v & 0x3FF)
	g.drawAreaTop = int((v >> 10) & 0x3FF)
}

func gp0DrawAreaBR(g *GPU, words []uint32) {
	v := words[0]
	g.drawAreaRight = int(v & 0x3FF)
	g.drawAreaBottom = int((v >> 10) & 0x3FF)
}

// gp0DrawingOffset decodes two 11-bit signed fields by shifting each to the
// top of a 32-bit word and arithmetically back down by 21.
func gp0DrawingOffset(g *GPU, words []uint32) {
	v := words[0]
	x := uint32(v&0x7FF) << 21
	y := uint32((v>>11)&0x7FF) << 21
	g.drawOffsetX = int32(x) >> 21
	g.drawOffsetY = int32(y) >> 21
}

func gp0MaskBitSetting(g *GPU, words []uint32) {
	v := words[0]
	g.setMaskWhileDrawing = v&1 != 0
	g.checkMaskBeforeDraw = (v>>1)&1 != 0
}

// ---------------------------------------------------------------- GP1 port

func (g *GPU) WriteGP1(word uint32) {
	opcode := byte(word >> 24)
	arg := word & 0xFFFFFF
	switch opcode {
	case 0x00:
		g.gp1Reset()
	case 0x01:
		g.cmdCount = 0
		g.cmdTotal = 0
		g.cmdHandler = nil
		g.mode = gp0ModeCommand
	case 0x02:
		g.irqFlag = false
	case 0x03:
		g.displayDisable = arg&1 != 0
	case 0x04:
		g.dmaDirection = int(arg & 3)
	case 0x05:
		g.dispStartX = int(arg&0x3FE) &^ 1 // bit 0 forced to 0
		g.dispStartY = int((arg >> 10) & 0x1FF)
	case 0x06:
		g.dispRangeX1 = int(arg & 0xFFF)
		g.dispRangeX2 = int((arg >> 12) & 0xFFF)
	case 0x07:
		g.dispRangeY1 = int(arg & 0x3FF)
		g.dispRangeY2 = int((arg >> 10) & 0x3FF)
	case 0x08:
		g.horizRes = uint8(arg & 0x3)
		g.vertResBit = (arg>>2)&1 != 0
		g.videoModePAL = (arg>>3)&1 != 0
		g.displayDepth24 = (arg>>4)&1 != 0
		g.interlace = (arg>>5)&1 != 0
		g.horizRes |= uint8((arg & 0x40) >> 4) // bit 6 selects 368-wide mode
	default:
		if opcode >= 0x10 && opcode <= 0x1F {
			g.gp1GetInfo(arg & 0x7)
		} else {
			panic("gpu: unknown GP1 command opcode")
		}
	}
}

func (g *GPU) gp1GetInfo(sub uint32) {
	switch sub {
	case 2:
		g.gpuread = uint32(g.texWinMaskX) | uint32(g.texWinMaskY)<<5 |
			uint32(g.texWinOffsetX)<<10 | uint32(g.texWinOffsetY)<<15
	case 3:
		g.gpuread = uint32(g.drawAreaLeft) | uint32(g.drawAreaTop)<<10
	case 4:
		g.gpuread = uint32(g.drawAreaRight) | uint32(g.drawAreaBottom)<<10
	case 5:
		g.gpuread = uint32(int32(g.drawOffsetX)&0x7FF) | uint32(int32(g.drawOffsetY)&0x7FF)<<11
	case 7:
		g.gpuread = 2 // GPU version
	default:
		g.gpuread = 0
	}
}

func (g *GPU) gp1Reset() {
	*g = GPU{renderer: g.renderer}
	g.drawAreaRight = 0
	g.drawAreaBottom = 0
	g.mode = gp0ModeCommand
}

// ---------------------------------------------------------------- GPUREAD

// ReadGPUREAD services both Get-GPU-Info latched values and StoreImage
// pixel draining; outside those it returns the last latch (§4.5).
func (g *GPU) ReadGPUREAD() uint32 {
	if g.mode == gp0ModeStoreImage {
		lo := g.loadPixel()
		hi := g.loadPixel()
		if g.window.curY >= g.window.startY+g.window.height {
			g.mode = gp0ModeCommand
		}
		g.gpuread = uint32(lo) | uint32(hi)<<16
	}
	return g.gpuread
}

func (g *GPU) loadPixel() uint16 {
	if g.window.curY >= g.window.startY+g.window.height {
		return 0
	}
	addr := (g.window.curY%vramHeight)*vramWidth + (g.window.curX % vramWidth)
	px := g.vram[addr]
	g.window.curX++
	if g.window.curX >= g.window.startX+g.window.width {
		g.window.curX = g.window.startX
		g.window.curY++
	}
	return px
}

// ---------------------------------------------------------------- status

// ReadStatus renders GPUSTAT. Bit 19 (vertical resolution) is deliberately
// not propagated - see §9, a known fidelity gap carried from the source to
// avoid a BIOS loop that otherwise spins waiting on a VBlank/timer the core
// does not model.
func (g *GPU) ReadStatus() uint32 {
	var s uint32
	s |= uint32(g.texPageX / 64 & 0xF)
	s |= uint32(boolBit(g.texPageY != 0)) << 4
	s |= uint32(g.semiTransparency&3) << 5
	s |= uint32(g.texDepth&3) << 7
	s |= uint32(boolBit(g.dither)) << 9
	s |= uint32(boolBit(g.drawToDisplay)) << 10
	s |= uint32(boolBit(g.setMaskWhileDrawing)) << 11
	s |= uint32(boolBit(g.checkMaskBeforeDraw)) << 12
	s |= uint32(boolBit(g.field)) << 13
	s |= uint32(boolBit(g.textureDisable)) << 15
	s |= uint32(g.horizRes&3) << 16
	// bit 19 intentionally omitted
	s |= uint32(boolBit(g.videoModePAL)) << 20
	s |= uint32(boolBit(g.displayDepth24)) << 21
	s |= uint32(boolBit(g.interlace)) << 22
	s |= uint32(boolBit(g.displayDisable)) << 23
	s |= uint32(boolBit(g.irqFlag)) << 24
	s |= uint32(g.dmaDirection&3) << 29
	s |= 1 << 26 // ready to receive command
	s |= 1 << 27 // ready to send VRAM to CPU
	s |= 1 << 28 // ready to receive DMA block
	return s
}

func boolBit(b bool) int {
	if b {
		return 1
	}
	return 0
}

// Present hands the current VRAM window to the renderer collaborator.
func (g *GPU) Present() {
	g.renderer.Present(g.vram[:], Rect{X: g.dispStartX, Y: g.dispStartY, W: 640, H: 480})
}

// PushGP0Word is the entry point DMA uses to feed GP0 words, identical to a
// CPU-issued write to the GP0 port (§4.4).
func (g *GPU) PushGP0Word(word uint32) {
	g.WriteGP0(word)
}
