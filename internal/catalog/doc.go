// Package catalog parses the two metadata documents of a gallery upload and
// holds the result for concurrent readers.
//
// The catalog document lists items:
//
//	<comics>
//	  <comic name="cat01" name_rus="Кот" pics="3" tags="cats cute"/>
//	</comics>
//
// The groups document lists playlists of item names:
//
//	<playlists>
//	  <playlist name="Pets">
//	    <content name="cat01"/>
//	  </playlist>
//	</playlists>
//
// Parsing never returns a partial map. A malformed document yields a result
// whose Failure is set and whose map is empty.
//
// Store owns the current Snapshot. The importer replaces it wholesale after
// each upload and HTTP handlers read it without locking.
package catalog
