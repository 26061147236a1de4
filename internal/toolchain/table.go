package toolchain

// Builtin is the static toolchain registry. One entry per supported
// generator/compiler combination; entry order is the order shown in help.
var Builtin = mustTable(
	Descriptor{Name: "default", IsMake: true},
	Descriptor{Name: "gcc", Generator: "Unix Makefiles", IsMake: true},
	Descriptor{Name: "clang-libstdcxx", Generator: "Unix Makefiles", IsMake: true},
	Descriptor{Name: "libcxx", Generator: "Unix Makefiles", IsMake: true},
	Descriptor{Name: "sanitize-address", Generator: "Unix Makefiles", IsMake: true},
	Descriptor{Name: "sanitize-leak", Generator: "Unix Makefiles", IsMake: true},
	Descriptor{Name: "analyze", Generator: "Unix Makefiles", IsMake: true},
	Descriptor{Name: "ninja", Generator: "Ninja", IsNinja: true},

	Descriptor{Name: "xcode", Generator: "Xcode", Multiconfig: true, IsXcode: true, Requires: Darwin},
	Descriptor{Name: "osx-10-11", Generator: "Xcode", Multiconfig: true, IsXcode: true, OSXVersion: "10.11", Requires: Darwin},
	Descriptor{Name: "ios-8-4", Generator: "Xcode", Multiconfig: true, IsXcode: true, IOSVersion: "8.4", Requires: Darwin},
	Descriptor{Name: "ios-9-2", Generator: "Xcode", Multiconfig: true, IsXcode: true, IOSVersion: "9.2", Requires: Darwin},
	Descriptor{Name: "ios-nocodesign-9-2", Generator: "Xcode", Multiconfig: true, IsXcode: true, IOSVersion: "9.2", NoCodeSign: true, Requires: Darwin},

	Descriptor{Name: "mingw", Generator: "MinGW Makefiles", IsMake: true, RootEnv: "MINGW_PATH", Requires: Windows},
	Descriptor{Name: "mingw-c11", Generator: "MinGW Makefiles", IsMake: true, RootEnv: "MINGW_PATH", Requires: Windows},
	Descriptor{Name: "msys", Generator: "MSYS Makefiles", IsMake: true, RootEnv: "MSYS_PATH", Requires: Windows},

	Descriptor{Name: "vs-12-2013", Generator: "Visual Studio 12 2013", Multiconfig: true, IsMSVC: true, VSVersion: 12, Arch: "x86", Requires: Windows},
	Descriptor{Name: "vs-12-2013-win64", Generator: "Visual Studio 12 2013 Win64", Multiconfig: true, IsMSVC: true, VSVersion: 12, Arch: "amd64", Requires: Windows},
	Descriptor{Name: "vs-12-2013-xp", Generator: "Visual Studio 12 2013", Multiconfig: true, IsMSVC: true, VSVersion: 12, Arch: "x86", XP: true, Requires: Windows},
	Descriptor{Name: "vs-14-2015", Generator: "Visual Studio 14 2015", Multiconfig: true, IsMSVC: true, VSVersion: 14, Arch: "x86", Requires: Windows},
	Descriptor{Name: "vs-14-2015-win64", Generator: "Visual Studio 14 2015 Win64", Multiconfig: true, IsMSVC: true, VSVersion: 14, Arch: "amd64", Requires: Windows},
	Descriptor{Name: "vs-14-2015-xp", Generator: "Visual Studio 14 2015", Multiconfig: true, IsMSVC: true, VSVersion: 14, Arch: "x86", XP: true, Requires: Windows},

	Descriptor{Name: "nmake-vs-12-2013", Generator: "NMake Makefiles", IsMake: true, IsNMake: true, VSVersion: 12, Arch: "x86", Requires: Windows},
	Descriptor{Name: "nmake-vs-14-2015", Generator: "NMake Makefiles", IsMake: true, IsNMake: true, VSVersion: 14, Arch: "x86", Requires: Windows},
	Descriptor{Name: "ninja-vs-14-2015", Generator: "Ninja", IsNinja: true, VSVersion: 14, Arch: "amd64", Requires: Windows},
)

func mustTable(descs ...Descriptor) *Table {
	t, err := NewTable(descs...)
	if err != nil {
		panic(err)
	}
	for p, name := range map[Platform]string{
		Linux:   "gcc",
		Darwin:  "xcode",
		Windows: "vs-14-2015",
		Other:   "default",
	} {
		if err := t.SetDefault(p, name); err != nil {
			panic(err)
		}
	}
	return t
}
