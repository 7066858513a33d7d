package taskdata

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zstd"
)

func writeTestFile(t *testing.T, dir, name string, data []byte) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), data, 0644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func zstdCompress(t *testing.T, data []byte) []byte {
	t.Helper()
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		t.Fatalf("create zstd encoder: %v", err)
	}
	defer enc.Close()
	return enc.EncodeAll(data, nil)
}

func TestLoadDocumentCaseInsensitive(t *testing.T) {
	dir := t.TempDir()

	// Task files come off FAT media; lower-cased names must still resolve.
	writeTestFile(t, dir, "taskdata.xml", []byte(`<ISO11783_TaskData>
	  <PDT A="PDT1" B="Corn"/>
	  <XFR A="TSK00001"/>
	</ISO11783_TaskData>`))
	writeTestFile(t, dir, "tsk00001.xml", []byte(`<ISO11783_TaskData>
	  <TSK A="TSK-1" B="From fragment"/>
	</ISO11783_TaskData>`))

	d, err := OpenDir(dir)
	if err != nil {
		t.Fatalf("OpenDir failed: %v", err)
	}

	doc, err := d.LoadDocument()
	if err != nil {
		t.Fatalf("LoadDocument failed: %v", err)
	}
	if len(doc.Products) != 1 || doc.Products[0].Designator != "Corn" {
		t.Errorf("products = %+v", doc.Products)
	}
	if len(doc.Tasks) != 1 || doc.Tasks[0].Designator != "From fragment" {
		t.Errorf("tasks = %+v", doc.Tasks)
	}
	if len(doc.ExternalRefs) != 0 {
		t.Errorf("merged document carries external refs: %+v", doc.ExternalRefs)
	}
}

func TestLoadDocumentMissingFragment(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, dir, "TASKDATA.XML", []byte(`<ISO11783_TaskData>
	  <XFR A="PDT00001"/>
	</ISO11783_TaskData>`))

	d, err := OpenDir(dir)
	if err != nil {
		t.Fatalf("OpenDir failed: %v", err)
	}
	if _, err := d.LoadDocument(); err == nil {
		t.Error("LoadDocument should fail on a missing fragment")
	}
}

func TestLoadDocumentMissingRoot(t *testing.T) {
	d, err := OpenDir(t.TempDir())
	if err != nil {
		t.Fatalf("OpenDir failed: %v", err)
	}
	if _, err := d.LoadDocument(); err == nil {
		t.Error("LoadDocument should fail without TASKDATA.XML")
	}
}

func TestOpenDirRejectsFile(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, dir, "TASKDATA.XML", []byte("<ISO11783_TaskData/>"))

	if _, err := OpenDir(filepath.Join(dir, "TASKDATA.XML")); err == nil {
		t.Error("OpenDir should reject a plain file")
	}
}

func TestRunDescriptor(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, dir, "TLG00001.XML", []byte(`<TIM A=""><PTN A="" B=""/></TIM>`))

	d, err := OpenDir(dir)
	if err != nil {
		t.Fatalf("OpenDir failed: %v", err)
	}

	hdr, err := d.RunDescriptor("TLG00001")
	if err != nil {
		t.Fatalf("RunDescriptor failed: %v", err)
	}
	if hdr.Start == nil || hdr.Position == nil || hdr.Position.North == nil {
		t.Errorf("descriptor = %+v", hdr)
	}
}

func TestRunData(t *testing.T) {
	dir := t.TempDir()
	payload := []byte{0x01, 0x02, 0x03, 0x04}
	writeTestFile(t, dir, "tlg00001.bin", payload)

	d, err := OpenDir(dir)
	if err != nil {
		t.Fatalf("OpenDir failed: %v", err)
	}

	rc, err := d.RunData("TLG00001")
	if err != nil {
		t.Fatalf("RunData failed: %v", err)
	}
	defer rc.Close()

	got, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("read run data: %v", err)
	}
	if string(got) != string(payload) {
		t.Errorf("run data = %v, want %v", got, payload)
	}
}

func TestRunDataMissing(t *testing.T) {
	d, err := OpenDir(t.TempDir())
	if err != nil {
		t.Fatalf("OpenDir failed: %v", err)
	}
	if _, err := d.RunData("TLG00001"); !errors.Is(err, ErrMissingTimeLog) {
		t.Errorf("RunData for absent file = %v, want ErrMissingTimeLog", err)
	}
}

func TestRunDataZstd(t *testing.T) {
	dir := t.TempDir()
	payload := []byte("binary time log payload")
	writeTestFile(t, dir, "TLG00001.BIN.ZST", zstdCompress(t, payload))

	d, err := OpenDir(dir)
	if err != nil {
		t.Fatalf("OpenDir failed: %v", err)
	}

	rc, err := d.RunData("TLG00001")
	if err != nil {
		t.Fatalf("RunData failed: %v", err)
	}
	defer rc.Close()

	got, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("read compressed run data: %v", err)
	}
	if string(got) != string(payload) {
		t.Errorf("run data = %q, want %q", got, payload)
	}
}

func TestZstdDocument(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, dir, "TASKDATA.XML.zst",
		zstdCompress(t, []byte(`<ISO11783_TaskData><FRM A="FRM1" B="Home farm"/></ISO11783_TaskData>`)))

	d, err := OpenDir(dir)
	if err != nil {
		t.Fatalf("OpenDir failed: %v", err)
	}

	doc, err := d.LoadDocument()
	if err != nil {
		t.Fatalf("LoadDocument failed: %v", err)
	}
	if len(doc.Farms) != 1 || doc.Farms[0].Designator != "Home farm" {
		t.Errorf("farms = %+v", doc.Farms)
	}
}

func TestLocatePrefersPlainFile(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, dir, "TLG00001.BIN", []byte("plain"))
	writeTestFile(t, dir, "TLG00001.BIN.ZST", zstdCompress(t, []byte("compressed")))

	d, err := OpenDir(dir)
	if err != nil {
		t.Fatalf("OpenDir failed: %v", err)
	}

	rc, err := d.RunData("TLG00001")
	if err != nil {
		t.Fatalf("RunData failed: %v", err)
	}
	defer rc.Close()

	got, _ := io.ReadAll(rc)
	if string(got) != "plain" {
		t.Errorf("run data = %q, want the uncompressed sibling", got)
	}
}
