// Package lumasource decodes the luma plane of a clip into plane.Frame values.
//
// Source runs ffmpeg (command line assembled with ffmpeg-go) with a rawvideo
// gray output matching the clip's bit depth, reads frames forward from the
// pipe and keeps the most recent frame cached, so the strip requests the
// scanner issues for one frame decode it once. A request for a frame behind
// the decode position restarts the decoder from the beginning.
package lumasource
