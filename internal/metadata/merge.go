package metadata

// Additive merge: fill only fields that are currently absent, never
// overwrite a value a curator may have edited. This is the invariant that
// separates item and collection metadata from regenerable file records.

func fillString(dst **string, src *string) {
	if *dst == nil && src != nil {
		v := *src
		*dst = &v
	}
}

func fillList(dst *[]string, src []string) {
	if len(*dst) == 0 && len(src) > 0 {
		*dst = append([]string(nil), src...)
	}
}

func mergeItem(dst *Item, src Item) {
	fillString(&dst.DCMIType, src.DCMIType)
	fillString(&dst.Title, src.Title)
	fillList(&dst.Creator, src.Creator)
	fillList(&dst.Subject, src.Subject)
	fillList(&dst.Contributor, src.Contributor)
	fillString(&dst.Coverage, src.Coverage)
	fillString(&dst.Date, src.Date)
	fillString(&dst.Description, src.Description)
	fillString(&dst.Language, src.Language)
	fillString(&dst.Publisher, src.Publisher)
	fillString(&dst.Relation, src.Relation)
	fillString(&dst.Rights, src.Rights)
	fillString(&dst.Source, src.Source)
	fillList(&dst.Note, src.Note)
	fillString(&dst.RemoteEmbedURL, src.RemoteEmbedURL)
}

func mergeCollection(dst *Collection, src Collection) {
	fillString(&dst.Archive, src.Archive)
	fillString(&dst.ArchiveURL, src.ArchiveURL)
	fillString(&dst.DCMIType, src.DCMIType)
	fillString(&dst.Title, src.Title)
	fillList(&dst.Creator, src.Creator)
	fillList(&dst.Subject, src.Subject)
	fillList(&dst.Contributor, src.Contributor)
	fillString(&dst.Coverage, src.Coverage)
	fillString(&dst.Date, src.Date)
	fillString(&dst.Description, src.Description)
	fillString(&dst.Language, src.Language)
	fillString(&dst.Publisher, src.Publisher)
	fillString(&dst.Relation, src.Relation)
	fillString(&dst.Rights, src.Rights)
	fillString(&dst.Source, src.Source)
	fillList(&dst.Note, src.Note)
	fillString(&dst.Preview, src.Preview)
}
