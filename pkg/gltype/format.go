package gltype

import (
	"fmt"

	"github.com/Faultbox/glslgen/pkg/spirv"
)

// InternalFormat is a GL sized internal format enum.
type InternalFormat uint32

// FormatNone means no explicit format; the implementation default applies.
const FormatNone InternalFormat = 0

// GL sized internal formats usable as image formats.
const (
	FormatRGBA32F      InternalFormat = 0x8814
	FormatRGBA16F      InternalFormat = 0x881A
	FormatRG32F        InternalFormat = 0x8230
	FormatRG16F        InternalFormat = 0x822F
	FormatR11FG11FB10F InternalFormat = 0x8C3A
	FormatR32F         InternalFormat = 0x822E
	FormatR16F         InternalFormat = 0x822D
	FormatRGBA32UI     InternalFormat = 0x8D70
	FormatRGBA16UI     InternalFormat = 0x8D76
	FormatRGB10A2UI    InternalFormat = 0x906F
	FormatRGBA8UI      InternalFormat = 0x8D7C
	FormatRG32UI       InternalFormat = 0x823C
	FormatRG16UI       InternalFormat = 0x823A
	FormatRG8UI        InternalFormat = 0x8238
	FormatR32UI        InternalFormat = 0x8236
	FormatR16UI        InternalFormat = 0x8234
	FormatR8UI         InternalFormat = 0x8232
	FormatRGBA32I      InternalFormat = 0x8D82
	FormatRGBA16I      InternalFormat = 0x8D88
	FormatRGBA8I       InternalFormat = 0x8D8E
	FormatRG32I        InternalFormat = 0x823B
	FormatRG16I        InternalFormat = 0x8239
	FormatRG8I         InternalFormat = 0x8237
	FormatR32I         InternalFormat = 0x8235
	FormatR16I         InternalFormat = 0x8233
	FormatR8I          InternalFormat = 0x8231
	FormatRGBA16       InternalFormat = 0x805B
	FormatRGB10A2      InternalFormat = 0x8059
	FormatRGBA8        InternalFormat = 0x8058
	FormatRG16         InternalFormat = 0x822C
	FormatRG8          InternalFormat = 0x822B
	FormatR16          InternalFormat = 0x822A
	FormatR8           InternalFormat = 0x8229
	FormatRGBA16SNorm  InternalFormat = 0x8F9B
	FormatRGBA8SNorm   InternalFormat = 0x8F97
	FormatRG16SNorm    InternalFormat = 0x8F99
	FormatRG8SNorm     InternalFormat = 0x8F95
	FormatR16SNorm     InternalFormat = 0x8F98
	FormatR8SNorm      InternalFormat = 0x8F94
)

// formatNames holds the GL enum names, which are also the go-gl constant
// names.
var formatNames = map[InternalFormat]string{
	FormatRGBA32F:      "RGBA32F",
	FormatRGBA16F:      "RGBA16F",
	FormatRG32F:        "RG32F",
	FormatRG16F:        "RG16F",
	FormatR11FG11FB10F: "R11F_G11F_B10F",
	FormatR32F:         "R32F",
	FormatR16F:         "R16F",
	FormatRGBA32UI:     "RGBA32UI",
	FormatRGBA16UI:     "RGBA16UI",
	FormatRGB10A2UI:    "RGB10_A2UI",
	FormatRGBA8UI:      "RGBA8UI",
	FormatRG32UI:       "RG32UI",
	FormatRG16UI:       "RG16UI",
	FormatRG8UI:        "RG8UI",
	FormatR32UI:        "R32UI",
	FormatR16UI:        "R16UI",
	FormatR8UI:         "R8UI",
	FormatRGBA32I:      "RGBA32I",
	FormatRGBA16I:      "RGBA16I",
	FormatRGBA8I:       "RGBA8I",
	FormatRG32I:        "RG32I",
	FormatRG16I:        "RG16I",
	FormatRG8I:         "RG8I",
	FormatR32I:         "R32I",
	FormatR16I:         "R16I",
	FormatR8I:          "R8I",
	FormatRGBA16:       "RGBA16",
	FormatRGB10A2:      "RGB10_A2",
	FormatRGBA8:        "RGBA8",
	FormatRG16:         "RG16",
	FormatRG8:          "RG8",
	FormatR16:          "R16",
	FormatR8:           "R8",
	FormatRGBA16SNorm:  "RGBA16_SNORM",
	FormatRGBA8SNorm:   "RGBA8_SNORM",
	FormatRG16SNorm:    "RG16_SNORM",
	FormatRG8SNorm:     "RG8_SNORM",
	FormatR16SNorm:     "R16_SNORM",
	FormatR8SNorm:      "R8_SNORM",
}

// imageFormats maps SPIR-V image formats to GL internal formats. Formats
// missing from the table (Unknown, the 64-bit integer formats) map to
// FormatNone.
var imageFormats = map[spirv.ImageFormat]InternalFormat{
	spirv.ImageFormatRgba32f:      FormatRGBA32F,
	spirv.ImageFormatRgba16f:      FormatRGBA16F,
	spirv.ImageFormatRg32f:        FormatRG32F,
	spirv.ImageFormatRg16f:        FormatRG16F,
	spirv.ImageFormatR11fG11fB10f: FormatR11FG11FB10F,
	spirv.ImageFormatR32f:         FormatR32F,
	spirv.ImageFormatR16f:         FormatR16F,
	spirv.ImageFormatRgba32ui:     FormatRGBA32UI,
	spirv.ImageFormatRgba16ui:     FormatRGBA16UI,
	spirv.ImageFormatRgb10a2ui:    FormatRGB10A2UI,
	spirv.ImageFormatRgba8ui:      FormatRGBA8UI,
	spirv.ImageFormatRg32ui:       FormatRG32UI,
	spirv.ImageFormatRg16ui:       FormatRG16UI,
	spirv.ImageFormatRg8ui:        FormatRG8UI,
	spirv.ImageFormatR32ui:        FormatR32UI,
	spirv.ImageFormatR16ui:        FormatR16UI,
	spirv.ImageFormatR8ui:         FormatR8UI,
	spirv.ImageFormatRgba32i:      FormatRGBA32I,
	spirv.ImageFormatRgba16i:      FormatRGBA16I,
	spirv.ImageFormatRgba8i:       FormatRGBA8I,
	spirv.ImageFormatRg32i:        FormatRG32I,
	spirv.ImageFormatRg16i:        FormatRG16I,
	spirv.ImageFormatRg8i:         FormatRG8I,
	spirv.ImageFormatR32i:         FormatR32I,
	spirv.ImageFormatR16i:         FormatR16I,
	spirv.ImageFormatR8i:          FormatR8I,
	spirv.ImageFormatRgba16:       FormatRGBA16,
	spirv.ImageFormatRgb10A2:      FormatRGB10A2,
	spirv.ImageFormatRgba8:        FormatRGBA8,
	spirv.ImageFormatRg16:         FormatRG16,
	spirv.ImageFormatRg8:          FormatRG8,
	spirv.ImageFormatR16:          FormatR16,
	spirv.ImageFormatR8:           FormatR8,
	spirv.ImageFormatRgba16Snorm:  FormatRGBA16SNorm,
	spirv.ImageFormatRgba8Snorm:   FormatRGBA8SNorm,
	spirv.ImageFormatRg16Snorm:    FormatRG16SNorm,
	spirv.ImageFormatRg8Snorm:     FormatRG8SNorm,
	spirv.ImageFormatR16Snorm:     FormatR16SNorm,
	spirv.ImageFormatR8Snorm:      FormatR8SNorm,
}

// FromImageFormat returns the GL internal format for a SPIR-V image format.
func FromImageFormat(f spirv.ImageFormat) InternalFormat {
	return imageFormats[f]
}

// String returns the GL enum name without the GL_ prefix.
func (f InternalFormat) String() string {
	if f == FormatNone {
		return "NONE"
	}
	if name, ok := formatNames[f]; ok {
		return name
	}
	return fmt.Sprintf("InternalFormat(0x%04X)", uint32(f))
}

// GoConstant returns the go-gl identifier for f, e.g. "gl.RGBA8", or an
// empty string for FormatNone and unknown formats.
func (f InternalFormat) GoConstant() string {
	name, ok := formatNames[f]
	if !ok {
		return ""
	}
	return "gl." + name
}
