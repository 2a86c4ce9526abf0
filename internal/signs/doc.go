// Package signs locates the still pose images that make up a sign. Each
// vocabulary word has an asset folder under a base directory; the folder's
// images, sorted by filename and padded to a fixed length, form the frame
// sequence handed to the animation assembler.
package signs
