package pptx

import (
	"archive/zip"
	"fmt"
	"strings"
)

// The master, layout and theme parts are fixed boilerplate: the writer
// always emits a single blank layout and lets slides carry their own
// formatting inline.

func (w *pptxWriter) writeTheme(zw *zip.Writer) error {
	content := xmlHeader + fmt.Sprintf(`<a:theme xmlns:a="%s" name="Office Theme"><a:themeElements><a:clrScheme name="Office">`+
		`<a:dk1><a:sysClr val="windowText" lastClr="000000"/></a:dk1>`+
		`<a:lt1><a:sysClr val="window" lastClr="FFFFFF"/></a:lt1>`+
		`<a:dk2><a:srgbClr val="44546A"/></a:dk2>`+
		`<a:lt2><a:srgbClr val="E7E6E6"/></a:lt2>`+
		`<a:accent1><a:srgbClr val="4472C4"/></a:accent1>`+
		`<a:accent2><a:srgbClr val="ED7D31"/></a:accent2>`+
		`<a:accent3><a:srgbClr val="A5A5A5"/></a:accent3>`+
		`<a:accent4><a:srgbClr val="FFC000"/></a:accent4>`+
		`<a:accent5><a:srgbClr val="5B9BD5"/></a:accent5>`+
		`<a:accent6><a:srgbClr val="70AD47"/></a:accent6>`+
		`<a:hlink><a:srgbClr val="0563C1"/></a:hlink>`+
		`<a:folHlink><a:srgbClr val="954F72"/></a:folHlink>`+
		`</a:clrScheme><a:fontScheme name="Office">`+
		`<a:majorFont><a:latin typeface="Calibri Light"/><a:ea typeface=""/><a:cs typeface=""/></a:majorFont>`+
		`<a:minorFont><a:latin typeface="Calibri"/><a:ea typeface=""/><a:cs typeface=""/></a:minorFont>`+
		`</a:fontScheme><a:fmtScheme name="Office">`+
		`<a:fillStyleLst><a:solidFill><a:schemeClr val="phClr"/></a:solidFill><a:solidFill><a:schemeClr val="phClr"/></a:solidFill><a:solidFill><a:schemeClr val="phClr"/></a:solidFill></a:fillStyleLst>`+
		`<a:lnStyleLst><a:ln w="6350"><a:solidFill><a:schemeClr val="phClr"/></a:solidFill></a:ln><a:ln w="12700"><a:solidFill><a:schemeClr val="phClr"/></a:solidFill></a:ln><a:ln w="19050"><a:solidFill><a:schemeClr val="phClr"/></a:solidFill></a:ln></a:lnStyleLst>`+
		`<a:effectStyleLst><a:effectStyle><a:effectLst/></a:effectStyle><a:effectStyle><a:effectLst/></a:effectStyle><a:effectStyle><a:effectLst/></a:effectStyle></a:effectStyleLst>`+
		`<a:bgFillStyleLst><a:solidFill><a:schemeClr val="phClr"/></a:solidFill><a:solidFill><a:schemeClr val="phClr"/></a:solidFill><a:solidFill><a:schemeClr val="phClr"/></a:solidFill></a:bgFillStyleLst>`+
		`</a:fmtScheme></a:themeElements></a:theme>`, nsDrawingML)
	return writePart(zw, "ppt/theme/theme1.xml", content)
}

func (w *pptxWriter) writeSlideMaster(zw *zip.Writer) error {
	var b strings.Builder
	b.WriteString(xmlHeader)
	fmt.Fprintf(&b, `<p:sldMaster xmlns:a="%s" xmlns:r="%s" xmlns:p="%s">`, nsDrawingML, nsOfficeDocRels, nsPresentationML)
	b.WriteString(`<p:cSld><p:bg><p:bgRef idx="1001"><a:schemeClr val="bg1"/></p:bgRef></p:bg>`)
	b.WriteString(`<p:spTree><p:nvGrpSpPr><p:cNvPr id="1" name=""/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr>`)
	b.WriteString(`<p:grpSpPr><a:xfrm><a:off x="0" y="0"/><a:ext cx="0" cy="0"/><a:chOff x="0" y="0"/><a:chExt cx="0" cy="0"/></a:xfrm></p:grpSpPr>`)
	b.WriteString(`</p:spTree></p:cSld>`)
	b.WriteString(`<p:clrMap bg1="lt1" tx1="dk1" bg2="lt2" tx2="dk2" accent1="accent1" accent2="accent2" accent3="accent3" accent4="accent4" accent5="accent5" accent6="accent6" hlink="hlink" folHlink="folHlink"/>`)
	b.WriteString(`<p:sldLayoutIdLst><p:sldLayoutId id="2147483649" r:id="rId1"/></p:sldLayoutIdLst>`)
	b.WriteString(`<p:txStyles>`)
	b.WriteString(`<p:titleStyle><a:lvl1pPr algn="l"><a:defRPr sz="4400"><a:solidFill><a:schemeClr val="tx1"/></a:solidFill></a:defRPr></a:lvl1pPr></p:titleStyle>`)
	b.WriteString(`<p:bodyStyle><a:lvl1pPr><a:defRPr sz="1800"><a:solidFill><a:schemeClr val="tx1"/></a:solidFill></a:defRPr></a:lvl1pPr></p:bodyStyle>`)
	b.WriteString(`<p:otherStyle><a:lvl1pPr><a:defRPr sz="1800"/></a:lvl1pPr></p:otherStyle>`)
	b.WriteString(`</p:txStyles></p:sldMaster>`)
	if err := writePart(zw, "ppt/slideMasters/slideMaster1.xml", b.String()); err != nil {
		return err
	}
	rels := xmlHeader + fmt.Sprintf(`<Relationships xmlns="%s">`+
		`<Relationship Id="rId1" Type="%s" Target="../slideLayouts/slideLayout1.xml"/>`+
		`<Relationship Id="rId2" Type="%s" Target="../theme/theme1.xml"/>`+
		`</Relationships>`, nsRelationships, relTypeSlideLayout, relTypeTheme)
	return writePart(zw, "ppt/slideMasters/_rels/slideMaster1.xml.rels", rels)
}

func (w *pptxWriter) writeSlideLayout(zw *zip.Writer) error {
	content := xmlHeader + fmt.Sprintf(`<p:sldLayout xmlns:a="%s" xmlns:r="%s" xmlns:p="%s" type="blank" preserve="1">`+
		`<p:cSld name="Blank">`+
		`<p:spTree><p:nvGrpSpPr><p:cNvPr id="1" name=""/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr>`+
		`<p:grpSpPr><a:xfrm><a:off x="0" y="0"/><a:ext cx="0" cy="0"/><a:chOff x="0" y="0"/><a:chExt cx="0" cy="0"/></a:xfrm></p:grpSpPr>`+
		`</p:spTree></p:cSld>`+
		`<p:clrMapOvr><a:masterClrMapping/></p:clrMapOvr>`+
		`</p:sldLayout>`, nsDrawingML, nsOfficeDocRels, nsPresentationML)
	if err := writePart(zw, "ppt/slideLayouts/slideLayout1.xml", content); err != nil {
		return err
	}
	rels := xmlHeader + fmt.Sprintf(`<Relationships xmlns="%s">`+
		`<Relationship Id="rId1" Type="%s" Target="../slideMasters/slideMaster1.xml"/>`+
		`</Relationships>`, nsRelationships, relTypeSlideMaster)
	return writePart(zw, "ppt/slideLayouts/_rels/slideLayout1.xml.rels", rels)
}
