package programs

import (
	"github.com/tricorn/tricorn/go/fs"
	"github.com/tricorn/tricorn/go/user"
)

const frame0 = `/\/\/\/\/\/\/\/\/\/\/\/\/\/\/\/\/\/\/\/\/\/\/\/\/\/\/\/\/\/\/\
       o
     o    o
   o
  _    \
 /o\_   |   ><((((o>
 \_/ \  |
      \ |
       \|   ><)))o>
`

const frame1 = `\/\/\/\/\/\/\/\/\/\/\/\/\/\/\/\/\/\/\/\/\/\/\/\/\/\/\/\/\/\/\/
      o
    o    o
  o
  _   /
 /o\_ |  ><((((o>
 \_/ \|
      |\
      | \    ><)))o>
`

// Files is the text content of the built-in image.
var Files = map[string]string{
	"frame0.txt": frame0,
	"frame1.txt": frame1,
	"created.txt": "very large text file with a very long name\n" +
		"the quick brown fox jumps over the lazy dog\n" +
		"THE QUICK BROWN FOX JUMPS OVER THE LAZY DOG\n",
}

// Builder returns an image builder holding the rtc, every registered program
// and Files.
func Builder() (*fs.Builder, error) {
	b := fs.NewBuilder()
	if err := b.Add("rtc", fs.TypeRTC, nil); err != nil {
		return nil, err
	}
	for _, e := range user.Programs() {
		img, err := user.Image(e.Name)
		if err != nil {
			return nil, err
		}
		if err := b.AddFile(e.Name, img); err != nil {
			return nil, err
		}
	}
	for name, text := range Files {
		if err := b.AddFile(name, []byte(text)); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// Image builds the default file system.
func Image() (*fs.Image, error) {
	b, err := Builder()
	if err != nil {
		return nil, err
	}
	return b.Build()
}
