package mcpserver

// SnapshotFormat describes the timeline snapshot structure that LLM consumers
// read from get_timeline and write through the library import.
const SnapshotFormat = `# Cutline Timeline Snapshot Format

A project's timeline is a list of tracks, each holding clips placed on a
shared time axis measured in seconds.

## Structure

` + "```" + `json
{
  "name": "Trailer cut",
  "duration": 12.5,
  "tracks": [
    {
      "id": "3f1c...",
      "type": "video",
      "name": "Video Track 1",
      "clips": [
        {
          "id": "9b2e...",
          "startTime": 0,
          "endTime": 4.5,
          "payload": {"name": "intro", "source": "/api/media/intro.mp4"}
        }
      ]
    }
  ]
}
` + "```" + `

## Rules

1. **Track types** are ` + "`" + `background` + "`" + `, ` + "`" + `video` + "`" + ` or ` + "`" + `audio` + "`" + `. Adding a track
   without a type fills the background slot first, then one video track,
   then audio tracks.
2. **Clip ranges** are half-open: a clip covers ` + "`" + `[startTime, endTime)` + "`" + `.
   ` + "`" + `startTime` + "`" + ` is at least 0 and ` + "`" + `endTime` + "`" + ` is strictly greater.
3. **Ids** are unique across all tracks and clips of a timeline.
4. **Duration** is never less than the largest clip end time. Removing a
   clip may shrink it; other edits only grow it.
5. **Payload** is free-form JSON carried with the clip. ` + "`" + `name` + "`" + ` is used as
   the display label and ` + "`" + `source` + "`" + ` should point at uploaded media.
6. **Clip order** inside a track follows start time when added. Moving a clip
   does not re-sort the track.

## Editing

- Edits apply to the project's live session and are recorded in undo history
  after a short pause. Call ` + "`" + `save_timeline` + "`" + ` to persist them.
- ` + "`" + `split_clip` + "`" + ` without ` + "`" + `at` + "`" + ` splits at the playhead. The split point must
  fall strictly inside the clip.
- ` + "`" + `move_clip` + "`" + ` keeps the clip length; negative start times are clamped to 0.
- Upload source media with ` + "`" + `upload_media` + "`" + ` and store the returned ` + "`" + `source` + "`" + `
  in the clip payload.

## Library files

Timeline files in the library directory are named
` + "`" + `<projectID>.timeline.json` + "`" + ` or ` + "`" + `<projectID>.timeline.yaml` + "`" + ` and use the
structure above. New or changed files are imported automatically.
`
