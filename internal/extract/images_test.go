package extract_test

import (
	"reflect"
	"strings"
	"testing"

	"github.com/campus-notice-collector/internal/extract"
)

func TestExtractImages(t *testing.T) {
	text := "[CQ:image,file=a.jpg,url=http://x/y.png] 截止4月8号 [CQ:image,file=b.jpg,url=http://x/z.png,subType=0]"

	urls, cleaned := extract.ExtractImages(text)

	want := []string{"http://x/y.png", "http://x/z.png"}
	if !reflect.DeepEqual(urls, want) {
		t.Errorf("Expected %v, got %v", want, urls)
	}
	if cleaned != "截止4月8号" {
		t.Errorf("Expected cleaned text '截止4月8号', got %q", cleaned)
	}
}

func TestExtractImages_BlockWithoutURL(t *testing.T) {
	urls, cleaned := extract.ExtractImages("前[CQ:image,file=a.jpg]后")

	if len(urls) != 0 {
		t.Errorf("Expected no urls, got %v", urls)
	}
	if cleaned != "前后" {
		t.Errorf("Expected '前后', got %q", cleaned)
	}
}

func TestExtractImages_NoResidualFragments(t *testing.T) {
	inputs := []string{
		"[CQ:image,url=http://a/1.png][CQ:image,url=http://a/2.png]",
		"文本 [CQ:image,file=x,url=http://a/3.png] 文本",
		"没有图片",
	}

	for _, in := range inputs {
		_, cleaned := extract.ExtractImages(in)
		if strings.Contains(cleaned, "[CQ:image") {
			t.Errorf("Residual image reference in %q", cleaned)
		}
	}
}

func TestImageRefRoundTrip(t *testing.T) {
	ref := extract.ImageRef("photo-1", "https://files.example.com/p.jpg")

	urls, cleaned := extract.ExtractImages("通知" + ref)
	if len(urls) != 1 || urls[0] != "https://files.example.com/p.jpg" {
		t.Errorf("Expected the rendered url back, got %v", urls)
	}
	if cleaned != "通知" {
		t.Errorf("Expected '通知', got %q", cleaned)
	}
}
