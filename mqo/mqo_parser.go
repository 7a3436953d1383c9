package mqo

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"log"
	"os"
	"regexp"
	"strconv"
	"strings"
	"text/scanner"

	"github.com/binzume/meshproc/geom"
	"github.com/pkg/errors"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"
)

// Parser for mqo file.
type Parser struct {
	r io.Reader
	s scanner.Scanner
}

// NewParser returns new parser.
func NewParser(r io.Reader, path string) *Parser {
	p := &Parser{r: r}
	p.s.Filename = path
	return p
}

func (p *Parser) readFloat() float64 {
	tok := p.s.Scan()
	var s float64 = 1
	if p.s.TokenText() == "-" {
		tok = p.s.Scan()
		s = -1
	}
	if tok != scanner.Int && tok != scanner.Float {
		return 0
	}
	n, _ := strconv.ParseFloat(p.s.TokenText(), 64)
	return n * s
}

func (p *Parser) readInt() int {
	tok := p.s.Scan()
	if tok != scanner.Int {
		log.Printf("  Invalid num  %s\n", p.s.TokenText())
		return 0
	}
	n, _ := strconv.Atoi(p.s.TokenText())
	return n
}

func (p *Parser) readStr() string {
	p.s.Scan()
	return strings.Trim(p.s.TokenText(), "\"")
}

// skipChunk skips the header tokens and the following block.
func (p *Parser) skipChunk() {
	for tok := p.s.Scan(); tok != scanner.EOF; tok = p.s.Scan() {
		if p.s.TokenText() == "{" {
			p.skipBlock()
			return
		}
	}
}

func (p *Parser) skip(t string) {
	p.s.Scan()
	if p.s.TokenText() != t {
		log.Printf("  Invalid token  %s != %s\n", p.s.TokenText(), t)
	}
}

// procAttrs reads "name(args...)" attributes until the end of the line.
func (p *Parser) procAttrs(handlers map[string]func(), name string) {
	line := p.s.Pos().Line
	for tok := p.s.Scan(); line == p.s.Pos().Line && tok != scanner.EOF; tok = p.s.Scan() {
		if handler, ok := handlers[p.s.TokenText()]; ok {
			p.skip("(")
			handler()
			p.skip(")")
		} else {
			p.skip("(")
			for tok := p.s.Scan(); line == p.s.Pos().Line && tok != scanner.EOF; tok = p.s.Scan() {
				if p.s.TokenText() == ")" {
					break
				}
			}
		}
		if p.s.Peek() == 0x0d || p.s.Peek() == 0x0a {
			break
		}
	}
}

func (p *Parser) skipBlock() {
	p.s.Error = func(s *scanner.Scanner, msg string) {
		s.ErrorCount--
	}
	defer func() { p.s.Error = nil }()
	for tok := p.s.Scan(); tok != scanner.EOF; tok = p.s.Scan() {
		if p.s.TokenText() == "}" {
			return
		}
		if p.s.TokenText() == "{" {
			p.skipBlock()
		}
	}
}

func (p *Parser) procArray(init, elem func(n int)) {
	n := p.readInt()
	p.skip("{")
	init(n)
	for i := 0; i < n; i++ {
		elem(i)
	}
	p.skip("}")
}

func (p *Parser) procObj(handlers map[string]func()) {
	p.skip("{")
	for tok := p.s.Scan(); tok != scanner.EOF; tok = p.s.Scan() {
		if p.s.TokenText() == "}" {
			break
		}
		if p.s.TokenText() == "{" {
			p.skipBlock()
		}
		if handler, ok := handlers[p.s.TokenText()]; ok {
			handler()
		}
	}
}

func (p *Parser) readMaterial() *Material {
	var m Material
	m.Name = p.readStr()
	p.procAttrs(map[string]func(){
		"col": func() { m.Color = [4]float64{p.readFloat(), p.readFloat(), p.readFloat(), p.readFloat()} },
	}, "Material "+m.Name)
	return &m
}

func (p *Parser) readObject() *Object {
	o := NewObject(p.readStr())

	p.procObj(map[string]func(){
		"depth":   func() { o.Depth = p.readInt() },
		"visible": func() { o.Visible = p.readInt() > 0 },
		"locking": func() { o.Locked = p.readInt() > 0 },
		"vertex": func() {
			p.procArray(func(n int) {
				o.Vertexes = make([]geom.Vector3, n)
			}, func(i int) {
				o.Vertexes[i] = geom.Vector3{X: p.readFloat(), Y: p.readFloat(), Z: p.readFloat()}
			})
		},
		"face": func() {
			p.procArray(func(n int) {
				o.Faces = make([]*Face, n)
			}, func(i int) {
				var f Face
				o.Faces[i] = &f
				vn := p.readInt()
				p.procAttrs(map[string]func(){
					"V": func() {
						f.Verts = make([]int, vn)
						for i := 0; i < vn; i++ {
							f.Verts[i] = p.readInt()
						}
					},
					"M": func() { f.Material = p.readInt() },
				}, fmt.Sprintf("Object %v F%v", o.Name, i))
			})
		},
	})
	return o
}

// detectCodePage wraps the reader with a Shift-JIS decoder unless the header declares utf8.
func (p *Parser) detectCodePage() {
	buf := make([]byte, 128)
	n, _ := p.r.Read(buf)
	p.r = io.MultiReader(bytes.NewReader(buf[:n]), p.r)
	if matched, _ := regexp.Match(`CodePage\s+utf8`, buf[:n]); !matched {
		p.r = transform.NewReader(p.r, japanese.ShiftJIS.NewDecoder())
	}
}

func (p *Parser) Parse() (*Document, error) {
	p.detectCodePage()
	p.s.Init(p.r)

	doc := NewDocument()
	for tok := p.s.Scan(); tok != scanner.EOF; tok = p.s.Scan() {
		if tok != scanner.Ident {
			continue
		}
		switch p.s.TokenText() {
		case "Material":
			p.procArray(func(n int) {}, func(i int) {
				doc.Materials = append(doc.Materials, p.readMaterial())
			})
		case "Object":
			doc.Objects = append(doc.Objects, p.readObject())
		case "Scene", "Thumbnail", "MaterialEx2", "BackImage", "Blob":
			p.skipChunk()
		case "Eof":
			return doc, p.checkErrors()
		}
	}
	return doc, p.checkErrors()
}

func (p *Parser) checkErrors() error {
	if p.s.ErrorCount > 0 {
		return errors.Errorf("mqo: parse error (count:%d)", p.s.ErrorCount)
	}
	return nil
}

func LoadMQOZ(path string) (*Document, error) {
	z, err := zip.OpenReader(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	defer z.Close()
	for _, f := range z.File {
		if strings.HasSuffix(f.Name, ".mqo") {
			r, err := f.Open()
			if err != nil {
				return nil, errors.Wrapf(err, "open %s in %s", f.Name, path)
			}
			defer r.Close()
			return NewParser(r, path).Parse()
		}
	}
	return nil, errors.Wrapf(os.ErrNotExist, "no mqo in %s", path)
}

func Load(path string) (*Document, error) {
	if strings.HasSuffix(path, ".mqoz") {
		return LoadMQOZ(path)
	}
	r, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	defer r.Close()
	return NewParser(r, path).Parse()
}
