package convert

// Default command templates keyed by derivative format tag. Placeholders:
// {source} input path, {target} output path, {frame} page/image/time index.
// Tags beyond the built-in planner table stay available here so
// configuration-defined rules can reference them.
var defaultCommands = map[string]string{
	// raster images (imagemagick)
	"df-med-img": `convert "{source}[{frame}]" -density 300 -resize 800x600\> -background white -alpha remove -auto-orient "{target}"`,
	"df-lg-img":  `convert "{source}[{frame}]" -density 300 -resize 1920x1080\> -background white -alpha remove -auto-orient "{target}"`,
	"pf-tiff":    `convert -compress none "{source}[{frame}]" "{target}"`,

	// vector images (inkscape)
	"pf-vector":     `inkscape "{source}" --export-plain-svg="{target}"`,
	"df-pdf-vector": `inkscape "{source}" --export-pdf="{target}"`,

	// audio and video (ffmpeg)
	"pf-wav":           `ffmpeg -i "{source}" "{target}"`,
	"df-mp3":           `ffmpeg -i "{source}" "{target}"`,
	"pf-ffv1":          `ffmpeg -loglevel panic -nostdin -i "{source}" -vcodec ffv1 -acodec pcm_s16le "{target}"`,
	"df-h264":          `ffmpeg -loglevel panic -nostdin -i "{source}" -vcodec libx264 -acodec aac -ab 384K -crf 21 -bf 2 -flags +cgop -pix_fmt yuv420p -movflags faststart "{target}"`,
	"df-h264-concat":   `ffmpeg -loglevel panic -nostdin -f concat -segment_time_metadata 1 -i "{source}" -vcodec libx264 -acodec aac -ab 384K -crf 21 -bf 2 -flags +cgop -pix_fmt yuv420p -movflags faststart "{target}"`,
	"df-360p-vp9-400k": `ffmpeg -loglevel panic -nostdin -i "{source}" -codec:v libvpx-vp9 -b:v 400K -crf 31 -speed 4 -tile-columns 6 -frame-parallel 1 -vf scale=-1:360 -f webm "{target}"`,
	// -ss before the input uses keyframe seeking
	"df-video-still": `ffmpeg -loglevel panic -nostdin -ss {frame}.0 -i "{source}" -frames:v 1 "{target}"`,

	// documents
	"df-pandoc-html":   `pandoc -o "{target}" -t html5 --standalone "{source}"`,
	"df-docutils-html": `rst2html5 --date --smart-quotes=yes "{source}" "{target}"`,
	"df-pdf-doc":       `libreoffice --headless --convert-to pdf "{source}"; filename=$(basename -- "{source}"); mv "${filename%.*}.pdf" "{target}"`,

	// web resources (wget / wkhtmltox); sources are url list files
	"pf-webarc":             `wget --input-file="{source}" --convert-links --page-requisites --span-hosts --adjust-extension --restrict-file-names=windows --directory-prefix="{target}"`,
	"df-pdf-html":           `read -r URL < "{source}"; wkhtmltopdf "$URL" "{target}"`,
	"pf-screenshot":         `read -r URL < "{source}"; wkhtmltoimage "$URL" "{target}"`,
	"df-screenshot-cropped": `read -r URL < "{source}"; wkhtmltoimage "$URL" --crop-h 800 --quality 60 "{target}"`,
	"df-img-screenshot":     `xvfb-run -a -- wkhtmltoimage --crop-h 800 --quality 60 "{source}" "{target}"`,
}

// DefaultCommand returns the built-in template for a format tag.
func DefaultCommand(tag string) (string, bool) {
	cmd, ok := defaultCommands[tag]
	return cmd, ok
}
