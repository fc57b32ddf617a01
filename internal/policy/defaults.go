package policy

// Element and attribute names are stored lower-cased. Lookups fold case.

// alwaysDeniedElements can run script or embed foreign documents.
var alwaysDeniedElements = []string{
	"script", "foreignobject", "iframe", "object", "embed",
	"audio", "video", "handler", "listener",
}

// alwaysDeniedSchemes execute script when dereferenced.
var alwaysDeniedSchemes = []string{"javascript", "vbscript", "livescript", "mocha"}

// alwaysDeniedDataTypes are data: media types a browser may render as an
// active document.
var alwaysDeniedDataTypes = []string{
	"text/html", "application/xhtml+xml", "image/svg+xml",
	"text/xml", "application/xml", "text/javascript", "application/javascript",
}

// animationElements may rewrite other attributes at runtime.
var animationElements = []string{"animate", "animatemotion", "animatetransform", "animatecolor", "set"}

// protectedAnimationTargets may not be the attributeName of an animation.
var protectedAnimationTargets = []string{"href", "xlink:href", "src", "style"}

var defaultElements = []string{
	"svg", "g", "defs", "desc", "title", "symbol", "use", "image", "switch", "view", "a",
	"path", "rect", "circle", "ellipse", "line", "polyline", "polygon",
	"text", "tspan", "textpath",
	"lineargradient", "radialgradient", "stop", "pattern",
	"clippath", "mask", "marker", "style",
	"filter", "feblend", "fecolormatrix", "fecomponenttransfer", "fecomposite",
	"feconvolvematrix", "fediffuselighting", "fedisplacementmap", "fedistantlight",
	"fedropshadow", "feflood", "fefunca", "fefuncb", "fefuncg", "fefuncr",
	"fegaussianblur", "feimage", "femerge", "femergenode", "femorphology",
	"feoffset", "fepointlight", "fespecularlighting", "fespotlight", "fetile",
	"feturbulence",
	"animate", "animatemotion", "animatetransform", "set", "mpath",
}

var strictElements = []string{
	"svg", "g", "defs", "desc", "title", "symbol", "use",
	"path", "rect", "circle", "ellipse", "line", "polyline", "polygon",
	"text", "tspan",
	"lineargradient", "radialgradient", "stop", "pattern", "clippath", "mask",
}

// globalAttributes are allowed on every allowed element.
var globalAttributes = []string{
	"accent-height", "accumulate", "additive", "alignment-baseline", "ascent",
	"azimuth", "basefrequency", "baseline-shift", "bias",
	"class", "clip", "clip-path", "clip-rule", "color", "color-interpolation",
	"color-interpolation-filters", "color-profile", "color-rendering",
	"cx", "cy", "d", "dx", "dy", "diffuseconstant", "direction", "display",
	"divisor", "edgemode", "elevation", "fill", "fill-opacity", "fill-rule",
	"filter", "filterunits", "primitiveunits", "flood-color", "flood-opacity",
	"font-family", "font-size", "font-size-adjust", "font-stretch", "font-style",
	"font-variant", "font-weight", "fx", "fy", "fr", "gradientunits", "gradienttransform",
	"height", "href", "id", "image-rendering", "in", "in2",
	"k", "k1", "k2", "k3", "k4", "kerning", "kernelmatrix", "kernelunitlength",
	"lang", "lengthadjust", "letter-spacing", "lighting-color",
	"marker-end", "marker-mid", "marker-start", "markerheight", "markerunits", "markerwidth",
	"mask", "maskcontentunits", "maskunits", "mode", "numoctaves", "offset",
	"opacity", "operator", "order", "orient", "overflow", "paint-order",
	"pathlength", "patterncontentunits", "patterntransform", "patternunits",
	"points", "pointsatx", "pointsaty", "pointsatz", "preservealpha", "preserveaspectratio",
	"r", "radius", "refx", "refy", "result", "rotate", "rx", "ry", "scale", "seed",
	"shape-rendering", "specularconstant", "specularexponent", "spreadmethod",
	"startoffset", "stddeviation", "stitchtiles", "stop-color", "stop-opacity",
	"stroke", "stroke-dasharray", "stroke-dashoffset", "stroke-linecap",
	"stroke-linejoin", "stroke-miterlimit", "stroke-opacity", "stroke-width",
	"style", "surfacescale", "systemlanguage", "tablevalues", "targetx", "targety",
	"text-anchor", "text-decoration", "text-rendering", "textlength", "transform",
	"transform-origin", "type", "vector-effect", "version", "viewbox", "visibility",
	"width", "word-spacing", "writing-mode", "x", "x1", "x2",
	"xchannelselector", "ychannelselector", "y", "y1", "y2", "z", "zoomandpan",
	"xlink:href", "xlink:title", "xml:space", "xml:lang",
	"mix-blend-mode", "isolation", "dominant-baseline", "method", "spacing", "side",
	"values", "slope", "intercept", "amplitude", "exponent",
}

// strictGlobalAttributes drops filter, animation and text layout extras.
var strictGlobalAttributes = []string{
	"class", "clip-path", "clip-rule", "color", "cx", "cy", "d", "dx", "dy",
	"display", "fill", "fill-opacity", "fill-rule", "font-family", "font-size",
	"font-style", "font-weight", "fx", "fy", "gradientunits", "gradienttransform",
	"height", "href", "id", "mask", "maskcontentunits", "maskunits", "offset",
	"opacity", "pathlength", "patterncontentunits", "patterntransform", "patternunits",
	"points", "preserveaspectratio", "r", "rx", "ry", "spreadmethod",
	"stop-color", "stop-opacity", "stroke", "stroke-dasharray", "stroke-dashoffset",
	"stroke-linecap", "stroke-linejoin", "stroke-miterlimit", "stroke-opacity",
	"stroke-width", "style", "text-anchor", "transform", "version", "viewbox",
	"visibility", "width", "x", "x1", "x2", "y", "y1", "y2",
	"xlink:href", "xml:space",
}

// elementAttributes are allowed only on the named element.
var elementAttributes = map[string][]string{
	"a":                {"target", "rel", "hreflang"},
	"style":            {"media"},
	"animate":          {"attributename", "attributetype", "begin", "by", "calcmode", "dur", "end", "from", "keysplines", "keytimes", "max", "min", "repeatcount", "repeatdur", "restart", "to"},
	"animatemotion":    {"begin", "by", "calcmode", "dur", "end", "from", "keypoints", "keysplines", "keytimes", "path", "repeatcount", "repeatdur", "restart", "to"},
	"animatetransform": {"attributename", "attributetype", "begin", "by", "calcmode", "dur", "end", "from", "keysplines", "keytimes", "repeatcount", "repeatdur", "restart", "to"},
	"set":              {"attributename", "attributetype", "begin", "dur", "end", "repeatcount", "repeatdur", "restart", "to"},
	"textpath":         {"method", "side", "spacing", "startoffset"},
}

// uriAttributes carry a URI reference.
var uriAttributes = []string{"href", "xlink:href", "src"}

// cssAttributes may contain url(...) or other CSS.
var cssAttributes = []string{
	"style", "fill", "stroke", "filter", "clip-path", "mask",
	"marker-start", "marker-mid", "marker-end", "cursor",
}

// localReferenceElements may only reference fragments of the same document.
var localReferenceElements = []string{"use", "mpath", "textpath", "feimage"}

var defaultSchemes = []string{"http", "https", "data"}

var strictSchemes = []string{"http", "https"}

var defaultDataTypes = []string{"image/png", "image/jpeg", "image/gif", "image/webp"}
