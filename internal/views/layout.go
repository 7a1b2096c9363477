package views

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"github.com/conneroisu/collegedash/internal/navigation"
)

// Page wraps body in the dashboard chrome: breadcrumbs, back and home
// controls, and the command palette.
func Page(state navigation.State, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, out io.Writer) error {
		w := &writer{w: out}
		w.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
		w.raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		w.raw(`<title>`)
		w.text(state.Title)
		w.raw(` · College Dashboard</title><style>`)
		w.raw(pageStyle)
		w.raw(`</style></head>`)
		w.rawf(`<body data-active="%s" data-section="%s">`,
			templ.EscapeString(state.Active), templ.EscapeString(state.Section))

		w.raw(`<header class="topbar"><nav class="breadcrumbs" aria-label="Breadcrumb"><ol>`)
		for i, crumb := range state.Breadcrumbs {
			w.raw(`<li>`)
			if i == len(state.Breadcrumbs)-1 {
				w.raw(`<span aria-current="page">`)
				w.text(crumb.Title)
				w.raw(`</span>`)
			} else {
				w.navButton(crumb.ID, crumb.Title, "crumb")
			}
			w.raw(`</li>`)
		}
		w.raw(`</ol></nav><div class="controls">`)
		w.raw(`<form method="post" action="/back" id="back-form"><button type="submit">Back</button></form>`)
		w.raw(`<form method="post" action="/home"><button type="submit">Home</button></form>`)
		w.raw(`</div></header>`)

		w.raw(`<form method="post" action="/navigate" id="palette" class="palette" hidden>`)
		w.raw(`<input type="search" name="section" id="palette-input" list="palette-results" autocomplete="off" placeholder="Go to section…" aria-label="Go to section">`)
		w.raw(`<datalist id="palette-results"></datalist></form>`)

		w.raw(`<main>`)
		if !state.Known {
			w.raw(`<p class="notice" role="status">No section named “`)
			w.text(state.Active)
			w.raw(`”, showing the overview.</p>`)
		}
		if w.err == nil {
			w.err = body.Render(ctx, out)
		}
		w.raw(`</main><script>`)
		w.raw(pageScript)
		w.raw(`</script></body></html>`)
		return w.err
	})
}

const pageStyle = `body{font-family:system-ui,sans-serif;margin:0;color:#1f2933}
.topbar{display:flex;justify-content:space-between;align-items:center;padding:.75rem 1.5rem;border-bottom:1px solid #e4e7eb}
.breadcrumbs ol{display:flex;gap:.5rem;list-style:none;margin:0;padding:0}
.breadcrumbs li+li::before{content:"›";margin-right:.5rem;color:#7b8794}
.controls{display:flex;gap:.5rem}
.nav-form{display:inline}
button{font:inherit;cursor:pointer}
.crumb,.link,.leaf-link{background:none;border:none;color:#2563eb;padding:0}
main{padding:1.5rem}
.notice{background:#fffbea;border:1px solid #f7c948;border-radius:.5rem;padding:.5rem 1rem}
.hubs{display:grid;grid-template-columns:repeat(auto-fill,minmax(14rem,1fr));gap:1rem}
.card{border:1px solid #e4e7eb;border-radius:.5rem;padding:1rem}
.palette{position:fixed;top:20%;left:50%;transform:translateX(-50%);width:min(32rem,90vw)}
.palette input{width:100%;font-size:1.25rem;padding:.75rem}
`

// pageScript wires the keyboard surface and live updates. ctrl/cmd+k opens
// the palette; Escape closes it when open and otherwise submits back.
const pageScript = `(function(){
var palette=document.getElementById('palette');
var input=document.getElementById('palette-input');
var results=document.getElementById('palette-results');
function openPalette(){palette.hidden=false;input.value='';input.focus();}
function closePalette(){palette.hidden=true;input.blur();}
document.addEventListener('keydown',function(e){
if((e.ctrlKey||e.metaKey)&&e.key.toLowerCase()==='k'){e.preventDefault();openPalette();return;}
if(e.key==='Escape'){e.preventDefault();if(!palette.hidden){closePalette();}else{document.getElementById('back-form').submit();}}
});
input.addEventListener('input',function(){
fetch('/api/search?q='+encodeURIComponent(input.value)).then(function(r){return r.json();}).then(function(matches){
results.innerHTML='';
(matches||[]).forEach(function(m){var o=document.createElement('option');o.value=m.id;o.label=m.title;results.appendChild(o);});
}).catch(function(){});
});
var proto=location.protocol==='https:'?'wss:':'ws:';
try{
var ws=new WebSocket(proto+'//'+location.host+'/ws');
ws.onmessage=function(msg){
var ev=JSON.parse(msg.data);
if(ev.to!==document.body.dataset.active){location.reload();}
};
}catch(e){}
})();`
