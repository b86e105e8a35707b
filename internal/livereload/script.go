package livereload

// Script is the browser client served at /livereload.js.
const Script = `(() => {
  if (window.__SITEGEN_LR__) return;
  window.__SITEGEN_LR__ = true;
  let current = null;
  function connect() {
    const es = new EventSource('/livereload');
    es.onmessage = (e) => {
      try {
        const p = JSON.parse(e.data);
        if (p.initial) {
          if (current === null || p.id === current || p.id === '') { current = p.id; return; }
        }
        if (p.id !== current) {
          console.log('[sitegen] change detected, reloading');
          location.reload();
        }
      } catch (_) {}
    };
    es.onerror = () => {
      console.warn('[sitegen] livereload error - retrying');
      es.close();
      setTimeout(connect, 2000);
    };
  }
  connect();
})();
`

// ScriptTag is inserted before </body> of served HTML pages.
const ScriptTag = `<script src="/livereload.js"></script>`
