package mqo

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func WriteMQO(mqo *Document, ww io.Writer) error {
	w := bufio.NewWriter(ww)
	w.WriteString("Metasequoia Document\n")
	w.WriteString("Format Text Ver 1.1\n")
	w.WriteString("CodePage utf8\n")
	w.WriteString("\n")

	materials := mqo.Materials
	if len(materials) == 0 {
		materials = []*Material{{Name: "default", Color: [4]float64{1, 1, 1, 1}}}
	}
	fmt.Fprintf(w, "Material %v {\n", len(materials))
	for _, mat := range materials {
		fmt.Fprintf(w, "\t\"%v\" col(%.3f %.3f %.3f %.3f) dif(0.800) amb(0.600) emi(0.000) spc(0.000) power(5.00)\n",
			mat.Name, mat.Color[0], mat.Color[1], mat.Color[2], mat.Color[3])
	}
	w.WriteString("}\n")

	for _, obj := range mqo.Objects {
		fmt.Fprintf(w, "Object \"%v\" {\n", obj.Name)
		fmt.Fprintf(w, "\tdepth %d\n", obj.Depth)
		fmt.Fprintf(w, "\tlocking %v\n", boolToInt(obj.Locked))
		if !obj.Visible {
			fmt.Fprint(w, "\tvisible 0\n")
		}
		w.WriteString("\tshading 1\n")
		w.WriteString("\tfacet 59.5\n")

		fmt.Fprintf(w, "\tvertex %v {\n", len(obj.Vertexes))
		for _, v := range obj.Vertexes {
			fmt.Fprintf(w, "\t\t%v %v %v\n", formatFloat(v.X), formatFloat(v.Y), formatFloat(v.Z))
		}
		w.WriteString("\t}\n")

		fmt.Fprintf(w, "\tface %v {\n", len(obj.Faces))
		for _, f := range obj.Faces {
			fmt.Fprintf(w, "\t\t%v V(%v) M(%v)\n", len(f.Verts), strings.Trim(fmt.Sprint(f.Verts), "[]"), f.Material)
		}
		w.WriteString("\t}\n")

		w.WriteString("}\n")
	}

	w.WriteString("Eof\n")
	return w.Flush()
}

func Save(doc *Document, path string) error {
	w, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create %s", path)
	}
	defer w.Close()
	if err := WriteMQO(doc, w); err != nil {
		return errors.Wrapf(err, "write %s", path)
	}
	return w.Close()
}
