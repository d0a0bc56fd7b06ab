package extract

import (
	"regexp"
	"strings"
)

var (
	imageRefPattern = regexp.MustCompile(`\[CQ:image,[^\]]+\]`)
	imageURLPattern = regexp.MustCompile(`url=([^,\]]+)`)
)

// ExtractImages pulls the URL out of every image reference block
// (`[CQ:image,...,url=<url>,...]`) in order of appearance and returns the
// text with all blocks removed and surrounding whitespace trimmed. Blocks
// without a url field are removed but contribute no URL.
func ExtractImages(text string) ([]string, string) {
	var urls []string
	cleaned := imageRefPattern.ReplaceAllStringFunc(text, func(ref string) string {
		if m := imageURLPattern.FindStringSubmatch(ref); m != nil {
			urls = append(urls, m[1])
		}
		return ""
	})
	return urls, strings.TrimSpace(cleaned)
}

// StripImages removes image reference blocks from text
func StripImages(text string) string {
	return imageRefPattern.ReplaceAllString(text, "")
}

// ImageRef renders an image reference block for a URL, used by chat
// sources that deliver attachments out of band.
func ImageRef(fileID, url string) string {
	return "[CQ:image,file=" + fileID + ",url=" + url + "]"
}
